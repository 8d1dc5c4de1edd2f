package persistence

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/topovec/codec"
)

const (
	fixedHeaderSize = 4 + 2 + 1 + 1 + 1 // magic, version, kind, comp, codec length
	lengthsSize     = 8
	checksumSize    = 4
)

// Encode frames payload, which must already be encoded with the codec named
// in h. The body is compressed with h.Compression.
func Encode(h Header, payload []byte) ([]byte, error) {
	if len(h.Codec) == 0 || len(h.Codec) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: codec name %q", ErrUnknownCodec, h.Codec)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes is too large", ErrCorrupt, len(payload))
	}
	body, err := compress(payload, h.Compression)
	if err != nil {
		return nil, err
	}

	size := fixedHeaderSize + len(h.Codec) + lengthsSize + len(body) + checksumSize
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, MagicNumber)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = append(buf, byte(h.Kind), byte(h.Compression), byte(len(h.Codec)))
	buf = append(buf, h.Codec...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(body)))
	buf = append(buf, body...)
	buf = binary.LittleEndian.AppendUint32(buf, Checksum(buf))
	return buf, nil
}

// ReadHeader parses the header of a frame without verifying its checksum.
func ReadHeader(data []byte) (Header, error) {
	h, _, err := readHeader(data)
	return h, err
}

func readHeader(data []byte) (Header, int, error) {
	if len(data) < 4 {
		return Header{}, 0, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data); magic != MagicNumber {
		return Header{}, 0, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
	}
	if len(data) < fixedHeaderSize {
		return Header{}, 0, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	h := Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Kind:        Kind(data[6]),
		Compression: Compression(data[7]),
	}
	if h.Version != Version {
		return Header{}, 0, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	off := fixedHeaderSize + int(data[8])
	if len(data) < off {
		return Header{}, 0, fmt.Errorf("%w: truncated codec name", ErrCorrupt)
	}
	h.Codec = string(data[fixedHeaderSize:off])
	return h, off, nil
}

// Decode verifies a frame and returns its header and decompressed payload.
func Decode(data []byte) (Header, []byte, error) {
	h, off, err := readHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if len(data) < off+lengthsSize+checksumSize {
		return Header{}, nil, fmt.Errorf("%w: truncated frame", ErrCorrupt)
	}
	rawLen := int(binary.LittleEndian.Uint32(data[off:]))
	bodyLen := int(binary.LittleEndian.Uint32(data[off+4:]))
	end := off + lengthsSize + bodyLen
	if len(data) != end+checksumSize {
		return Header{}, nil, fmt.Errorf("%w: frame is %d bytes, expected %d", ErrCorrupt, len(data), end+checksumSize)
	}
	if err := verify(data[:end], binary.LittleEndian.Uint32(data[end:])); err != nil {
		return Header{}, nil, err
	}
	payload, err := decompress(data[off+lengthsSize:end], h.Compression, rawLen)
	if err != nil {
		return Header{}, nil, err
	}
	return h, payload, nil
}

// Marshal encodes v with c (codec.Default if nil) and frames it.
func Marshal(kind Kind, c codec.Codec, comp Compression, v any) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode %s state: %w", kind, err)
	}
	return Encode(Header{Kind: kind, Compression: comp, Codec: c.Name()}, payload)
}

// Unmarshal verifies a frame of the given kind and decodes its payload into v
// with the codec named in the header.
func Unmarshal(data []byte, kind Kind, v any) (Header, error) {
	h, payload, err := Decode(data)
	if err != nil {
		return Header{}, err
	}
	if h.Kind != kind {
		return Header{}, fmt.Errorf("%w: frame holds %s, expected %s", ErrKindMismatch, h.Kind, kind)
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return Header{}, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}
	if err := c.Unmarshal(payload, v); err != nil {
		return Header{}, fmt.Errorf("%w: decode %s state: %w", ErrCorrupt, kind, err)
	}
	return h, nil
}
