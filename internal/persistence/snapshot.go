// Package persistence writes and reads index snapshots as single framed files.
//
// Layout:
//
//	[0:4]   magic "MVSX"
//	[4:8]   format version, little endian
//	[8:40]  BLAKE3-256 digest of the payload
//	[40:]   payload: zstd-compressed gob stream
package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/gcbaptista/movie-search/internal/errors"
)

const (
	FormatVersion uint32 = 1
	HeaderSize           = 40
)

var magic = [4]byte{'M', 'V', 'S', 'X'}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("persistence: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("persistence: zstd decoder initialization failed: " + err.Error())
	}
}

// SaveGob gob-encodes object and atomically replaces filePath with the
// framed snapshot. It creates necessary directories if they don't exist.
func SaveGob(filePath string, object interface{}) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(object); err != nil {
		return fmt.Errorf("failed to gob encode snapshot %s: %w", filePath, err)
	}

	payload := zstdEncoder.EncodeAll(buf.Bytes(), nil)
	digest := blake3.Sum256(payload)

	header := make([]byte, HeaderSize)
	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	copy(header[8:40], digest[:])

	tmpPath := filePath + ".tmp"
	file, err := os.Create(tmpPath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}
	cleanup := func() {
		_ = file.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := file.Write(header); err != nil {
		cleanup()
		return fmt.Errorf("failed to write snapshot header %s: %w", tmpPath, err)
	}
	if _, err := file.Write(payload); err != nil {
		cleanup()
		return fmt.Errorf("failed to write snapshot payload %s: %w", tmpPath, err)
	}
	if err := file.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync snapshot %s: %w", tmpPath, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot %s: %w", filePath, err)
	}
	return nil
}

// LoadGob verifies and decodes the snapshot at filePath into objectPointer.
// Every failure, including a missing file, is reported as an
// errors.SnapshotError so callers can match ErrCorruptOrMissingSnapshot.
func LoadGob(filePath string, objectPointer interface{}) error {
	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewSnapshotError(filePath, "snapshot file not found", os.ErrNotExist)
		}
		return errors.NewSnapshotError(filePath, "failed to read snapshot", err)
	}

	if len(data) < HeaderSize {
		return errors.NewSnapshotError(filePath, fmt.Sprintf("truncated header (%d bytes)", len(data)), nil)
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return errors.NewSnapshotError(filePath, "bad magic bytes", nil)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return errors.NewSnapshotError(filePath, fmt.Sprintf("unsupported format version %d", version), nil)
	}

	payload := data[HeaderSize:]
	digest := blake3.Sum256(payload)
	if !bytes.Equal(digest[:], data[8:40]) {
		return errors.NewSnapshotError(filePath, "checksum mismatch", nil)
	}

	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return errors.NewSnapshotError(filePath, "failed to decompress payload", err)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(objectPointer); err != nil {
		return errors.NewSnapshotError(filePath, "failed to gob decode payload", err)
	}
	return nil
}
