package packet

// Tag identifies a packet kind, per RFC 4880 section 4.3.
type Tag uint8

const (
	TagPublicKeyEncryptedSessionKey Tag = 1
	TagSignature                    Tag = 2
	TagSymmetricKeyEncryptedSessionKey Tag = 3
	TagOnePassSignature              Tag = 4
	TagSecretKey                     Tag = 5
	TagPublicKey                     Tag = 6
	TagSecretSubkey                  Tag = 7
	TagCompressedData                Tag = 8
	TagSymmetricallyEncrypted        Tag = 9
	TagMarker                        Tag = 10
	TagLiteralData                   Tag = 11
	TagTrust                         Tag = 12
	TagUserId                        Tag = 13
	TagPublicSubkey                  Tag = 14
	TagUserAttribute                 Tag = 17
	TagSymmetricallyEncryptedIntegrityProtected Tag = 18
	TagModificationDetectionCode     Tag = 19
)
