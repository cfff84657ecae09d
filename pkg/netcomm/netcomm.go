// Package netcomm provides the primitive wire reader and writer used by the
// game protocol. All multi-byte values are big-endian and signed unless the
// method name says otherwise.
package netcomm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read runs past the end of the buffer.
var ErrShortBuffer = errors.New("netcomm: short buffer")

// Reader supplies raw integers from an incoming message.
type Reader interface {
	ReadInt8() (int8, error)
	ReadUint8() (uint8, error)
	ReadInt16() (int16, error)
	ReadUint16() (uint16, error)
	ReadInt32() (int32, error)
	ReadUint32() (uint32, error)
}

// Writer accepts raw integers for an outgoing message.
type Writer interface {
	WriteInt8(v int8)
	WriteUint8(v uint8)
	WriteInt16(v int16)
	WriteUint16(v uint16)
	WriteInt32(v int32)
	WriteUint32(v uint32)
}

// Buffer is an in-memory Reader and Writer.
// Writes append to the end, reads consume from the front.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer wraps data for reading. The slice is not copied.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// Reset discards all content.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}

func (b *Buffer) next(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, b.Len())
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p, nil
}

// ReadInt8 reads a signed byte.
func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

// ReadUint8 reads an unsigned byte.
func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadInt16 reads a signed 16-bit value.
func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadUint16 reads an unsigned 16-bit value.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// ReadInt32 reads a signed 32-bit value.
func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads an unsigned 32-bit value.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// WriteInt8 appends a signed byte.
func (b *Buffer) WriteInt8(v int8) {
	b.data = append(b.data, byte(v))
}

// WriteUint8 appends an unsigned byte.
func (b *Buffer) WriteUint8(v uint8) {
	b.data = append(b.data, v)
}

// WriteInt16 appends a signed 16-bit value.
func (b *Buffer) WriteInt16(v int16) {
	b.data = binary.BigEndian.AppendUint16(b.data, uint16(v))
}

// WriteUint16 appends an unsigned 16-bit value.
func (b *Buffer) WriteUint16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

// WriteInt32 appends a signed 32-bit value.
func (b *Buffer) WriteInt32(v int32) {
	b.data = binary.BigEndian.AppendUint32(b.data, uint32(v))
}

// WriteUint32 appends an unsigned 32-bit value.
func (b *Buffer) WriteUint32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

// CharacterID identifies a character on the wire. It travels as an
// unsigned 32-bit value.
type CharacterID uint32

// String returns the id in decimal.
func (id CharacterID) String() string {
	return fmt.Sprintf("%d", uint32(id))
}

// Encode writes the id.
func (id CharacterID) Encode(w Writer) {
	w.WriteUint32(uint32(id))
}

// DecodeCharacterID reads an id.
func DecodeCharacterID(r Reader) (CharacterID, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("reading character id: %w", err)
	}
	return CharacterID(v), nil
}
