package serialization

import "time"

// Format constants.
const (
	MagicBytes      = "SYNP"
	FormatVersion   = 1
	FixedHeaderSize = 64   // 0x40 bytes
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	MaxPayloadSize  = 1 << 30
	FileExtension   = ".snp"
)

// Model types recorded in the snapshot "type" field.
const (
	TypeNeuralNetwork = "NeuralNetwork"
	TypeLSTM          = "LSTM"
)

// Header is the decoded fixed header.
type Header struct {
	Version     uint32
	PayloadSize uint64
	CreatedAt   time.Time
	Checksum    [ChecksumSize]byte
}

// File is a decoded snapshot file: its header and the verified JSON payload.
type File struct {
	Header  Header
	Payload []byte
}
