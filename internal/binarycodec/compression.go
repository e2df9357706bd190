package binarycodec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/spaghettifunk/forge/internal/corelog"
)

// CompressionLevel mirrors the fast/default/high-ratio levels named in the
// original foundation/utils/compression.h (kFast/kDefault/kHighCompression).
type CompressionLevel int

const (
	CompressionNone CompressionLevel = iota
	CompressionFast
	CompressionDefault
	CompressionHigh
)

// sentinel prefixes any file written with whole-file compression enabled.
// It is 16 bytes so the reader can tell a compressed file from a raw
// BinaryCodec payload with a single fixed-size peek.
var sentinel = [16]byte{'F', 'O', 'R', 'G', 'E', 'P', 'K', 'G', 'Z', 0, 0, 0, 0, 0, 0, 0}

func lz4Level(c CompressionLevel) lz4.CompressionLevel {
	switch c {
	case CompressionFast:
		return lz4.Fast
	case CompressionHigh:
		return lz4.Level9
	default:
		return lz4.Level6
	}
}

// EncodeFile returns the bytes that should be written to disk for payload,
// optionally compressing the whole buffer with LZ4. When level is
// CompressionNone the payload is returned unchanged.
func EncodeFile(payload []byte, level CompressionLevel) ([]byte, error) {
	if level == CompressionNone {
		return payload, nil
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
		return nil, err
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 16+4+compressed.Len())
	out = append(out, sentinel[:]...)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	out = append(out, sizeBuf[:]...)
	out = append(out, compressed.Bytes()...)
	return out, nil
}

// DecodeFile reverses EncodeFile. Files that don't start with the sentinel
// are returned unchanged (spec: "files without the sentinel are consumed
// uncompressed").
func DecodeFile(raw []byte) ([]byte, error) {
	if len(raw) < 20 || !bytes.Equal(raw[:16], sentinel[:]) {
		return raw, nil
	}

	originalSize := binary.LittleEndian.Uint32(raw[16:20])
	zr := lz4.NewReader(bytes.NewReader(raw[20:]))
	out := make([]byte, originalSize)
	if _, err := io.ReadFull(zr, out); err != nil && err != io.ErrUnexpectedEOF {
		corelog.LogError("binarycodec: lz4 decompress failed: %v", err)
		return nil, err
	}
	return out, nil
}
