package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
)

// Encode writes payload to w behind a fixed header.
func Encode(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return errors.WithStack(ErrPayloadTooLarge)
	}

	checksum := ComputeChecksum(payload)
	fixedHeader := make([]byte, FixedHeaderSize)

	// 0x00-0x03: Magic bytes
	copy(fixedHeader[0:4], MagicBytes)

	// 0x04-0x07: Version
	binary.LittleEndian.PutUint32(fixedHeader[4:8], FormatVersion)

	// 0x08-0x0F: Reserved (0)

	// 0x10-0x17: Payload size
	binary.LittleEndian.PutUint64(fixedHeader[16:24], uint64(len(payload)))

	// 0x18-0x1F: Creation time
	//nolint:gosec // G115: Unix seconds are positive
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(time.Now().Unix()))

	// 0x20-0x3F: SHA-256 checksum
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixedHeader); err != nil {
		return errors.Wrap(err, "write fixed header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "write payload")
	}
	return nil
}

// Marshal encodes snapshot as JSON and frames it.
func Marshal(snapshot any) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}
	if _, err := PeekType(payload); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(FixedHeaderSize + len(payload))
	if err := Encode(&buf, payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile saves snapshot to path. The file is written to a temporary
// sibling first and renamed into place, so a failed write never leaves a
// truncated snapshot behind.
func WriteFile(path string, snapshot any) error {
	data, err := Marshal(snapshot)
	if err != nil {
		return errs.IO("write", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.IO("write", path, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // No-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errs.IO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.IO("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.IO("write", path, err)
	}
	return nil
}
