package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
)

// Decode reads a framed snapshot from r and verifies its checksum.
func Decode(r io.Reader) (*File, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixedHeader); err != nil {
		return nil, errors.Wrap(err, "read fixed header")
	}

	if string(fixedHeader[0:4]) != MagicBytes {
		return nil, errors.WithStack(ErrInvalidMagic)
	}

	var f File
	f.Header.Version = binary.LittleEndian.Uint32(fixedHeader[4:8])
	if f.Header.Version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", f.Header.Version, FormatVersion)
	}

	f.Header.PayloadSize = binary.LittleEndian.Uint64(fixedHeader[16:24])
	if f.Header.PayloadSize > MaxPayloadSize {
		return nil, errors.WithStack(ErrPayloadTooLarge)
	}

	//nolint:gosec // G115: written from time.Now().Unix()
	f.Header.CreatedAt = time.Unix(int64(binary.LittleEndian.Uint64(fixedHeader[24:32])), 0).UTC()
	copy(f.Header.Checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])

	f.Payload = make([]byte, f.Header.PayloadSize)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, errors.Wrap(err, "read payload")
	}

	if err := ValidateChecksum(ComputeChecksum(f.Payload), f.Header.Checksum); err != nil {
		return nil, err
	}
	return &f, nil
}

// Unmarshal decodes framed bytes into snapshot.
func Unmarshal(data []byte, snapshot any) error {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return f.Decode(snapshot)
}

// ReadFile reads and verifies the snapshot file at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.IO("read", path, err)
	}
	defer func() {
		_ = file.Close() // Read-only; nothing to flush
	}()

	f, err := Decode(file)
	if err != nil {
		return nil, errs.IO("read", path, err)
	}
	return f, nil
}

// Type returns the model type recorded in the payload.
func (f *File) Type() (string, error) {
	return PeekType(f.Payload)
}

// Decode unmarshals the payload into snapshot.
func (f *File) Decode(snapshot any) error {
	if err := json.Unmarshal(f.Payload, snapshot); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}
	return nil
}

// PeekType returns the "type" field of a JSON snapshot without decoding the
// rest of it.
func PeekType(payload []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return "", errors.Wrap(err, "decode snapshot type")
	}
	switch head.Type {
	case TypeNeuralNetwork, TypeLSTM:
		return head.Type, nil
	case "":
		return "", errors.WithStack(ErrMissingType)
	default:
		return "", errs.Configuration("type", "unknown model type %q", head.Type)
	}
}
