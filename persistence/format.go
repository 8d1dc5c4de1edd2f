package persistence

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MagicNumber identifies topovec model frames (ASCII: "TVM1").
	MagicNumber = 0x314d5654
	// Version is the current frame format version.
	Version = 1
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrInvalidVersion  = errors.New("unsupported version")
	ErrKindMismatch    = errors.New("model kind mismatch")
	ErrUnknownCodec    = errors.New("unknown codec")
	ErrCorrupt         = errors.New("corrupt model frame")
	ErrInvalidCompress = errors.New("unknown compression")
)

// Kind identifies the estimator a frame belongs to.
type Kind uint8

const (
	KindEntropy   Kind = 1
	KindAmplitude Kind = 2
	KindATOL      Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindEntropy:
		return "PersistenceEntropy"
	case KindAmplitude:
		return "Amplitude"
	case KindATOL:
		return "ATOL"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Compression selects the block compression of a frame body.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// ParseCompression maps a compression name to its Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCompress, name)
	}
}

// Header describes a frame.
type Header struct {
	Version     uint16
	Kind        Kind
	Compression Compression
	Codec       string
}
