// Package binarycodec implements the length-prefixed, little-endian wire
// format shared by every package file and cache file the builder writes.
//
// Layout: fixed-width integers/floats are written verbatim in little-endian
// order, bool is one byte, strings are a u32 length followed by raw bytes,
// slices are a u64 count followed by each serialised element, and maps are a
// u64 count followed by serialised (key, value) pairs. Types implementing
// Serializable delegate to their own WriteTo/ReadFrom; everything else is
// copied bytewise through the fixed-width helpers below.
package binarycodec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/spaghettifunk/forge/internal/corelog"
)

// Serializable is the capability a container element must implement to
// control its own wire representation (spec: BinarySerializable).
type Serializable interface {
	WriteTo(w *Writer)
	ReadFrom(r *Reader)
}

// Writer accumulates a little-endian, length-prefixed byte stream.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
func (w *Writer) Len() int      { return w.buf.Len() }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) WriteU8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) WriteI8(v int8)    { w.buf.WriteByte(byte(v)) }
func (w *Writer) WriteU16(v uint16) { w.put(2, func(b []byte) { binary.LittleEndian.PutUint16(b, v) }) }
func (w *Writer) WriteU32(v uint32) { w.put(4, func(b []byte) { binary.LittleEndian.PutUint32(b, v) }) }
func (w *Writer) WriteU64(v uint64) { w.put(8, func(b []byte) { binary.LittleEndian.PutUint64(b, v) }) }
func (w *Writer) WriteI32(v int32)  { w.WriteU32(uint32(v)) }
func (w *Writer) WriteI64(v int64)  { w.WriteU64(uint64(v)) }
func (w *Writer) WriteF32(v float32) {
	w.put(4, func(b []byte) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) })
}
func (w *Writer) WriteF64(v float64) {
	w.put(8, func(b []byte) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) })
}

func (w *Writer) put(n int, fill func([]byte)) {
	var tmp [8]byte
	fill(tmp[:n])
	w.buf.Write(tmp[:n])
}

func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *Writer) WriteRawBytes(b []byte) {
	w.WriteU64(uint64(len(b)))
	w.buf.Write(b)
}

// WriteSlice writes the u64 count followed by each element via writeElem.
func WriteSlice[T any](w *Writer, items []T, writeElem func(*Writer, T)) {
	w.WriteU64(uint64(len(items)))
	for _, it := range items {
		writeElem(w, it)
	}
}

// WriteMap writes the u64 count followed by (key, value) pairs.
func WriteMap[K comparable, V any](w *Writer, m map[K]V, writeKey func(*Writer, K), writeVal func(*Writer, V)) {
	w.WriteU64(uint64(len(m)))
	for k, v := range m {
		writeKey(w, k)
		writeVal(w, v)
	}
}

// Reader consumes a byte stream in lock-step with Writer. Out-of-bounds
// reads log an error and return the zero value instead of panicking; once a
// read fails every subsequent read on the same Reader also returns zero so a
// caller can keep assembling a (partial, zeroed) result without guarding
// every call.
type Reader struct {
	r    *bytes.Reader
	fail bool
}

func NewReader(data []byte) *Reader { return &Reader{r: bytes.NewReader(data)} }

// Failed reports whether any read on this Reader has gone out of bounds.
func (r *Reader) Failed() bool { return r.fail }

func (r *Reader) get(n int) []byte {
	if r.fail {
		return make([]byte, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		corelog.LogError("binarycodec: short read (%d bytes): %v", n, err)
		r.fail = true
		return make([]byte, n)
	}
	return buf
}

func (r *Reader) ReadBool() bool   { return r.get(1)[0] != 0 }
func (r *Reader) ReadU8() uint8    { return r.get(1)[0] }
func (r *Reader) ReadI8() int8     { return int8(r.get(1)[0]) }
func (r *Reader) ReadU16() uint16  { return binary.LittleEndian.Uint16(r.get(2)) }
func (r *Reader) ReadU32() uint32  { return binary.LittleEndian.Uint32(r.get(4)) }
func (r *Reader) ReadU64() uint64  { return binary.LittleEndian.Uint64(r.get(8)) }
func (r *Reader) ReadI32() int32   { return int32(r.ReadU32()) }
func (r *Reader) ReadI64() int64   { return int64(r.ReadU64()) }
func (r *Reader) ReadF32() float32 { return math.Float32frombits(r.ReadU32()) }
func (r *Reader) ReadF64() float64 { return math.Float64frombits(r.ReadU64()) }

func (r *Reader) ReadString() string {
	n := r.ReadU32()
	if r.fail || n == 0 {
		return ""
	}
	return string(r.get(int(n)))
}

func (r *Reader) ReadRawBytes() []byte {
	n := r.ReadU64()
	if r.fail || n == 0 {
		return nil
	}
	return r.get(int(n))
}

// ReadSlice reads the u64 count and decodes each element with readElem.
func ReadSlice[T any](r *Reader, readElem func(*Reader) T) []T {
	n := r.ReadU64()
	if r.fail {
		return nil
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, readElem(r))
	}
	return out
}

// ReadMap reads the u64 count and decodes each (key, value) pair.
func ReadMap[K comparable, V any](r *Reader, readKey func(*Reader) K, readVal func(*Reader) V) map[K]V {
	n := r.ReadU64()
	m := make(map[K]V, n)
	if r.fail {
		return m
	}
	for i := uint64(0); i < n; i++ {
		k := readKey(r)
		v := readVal(r)
		m[k] = v
	}
	return m
}
