package persistence

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools; both are safe to reuse across frames.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// compress returns data encoded with c.
func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 && len(data) > 0 {
			// Incompressible input; lz4 leaves dst empty, so store a literal
			// block instead.
			return lz4Literal(data), nil
		}
		return dst[:n], nil
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompress, uint8(c))
	}
}

// decompress reverses compress. rawLen is the expected decoded length.
func decompress(body []byte, c Compression, rawLen int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch c {
	case CompressionNone:
		out = body
	case CompressionLZ4:
		out = make([]byte, rawLen)
		var n int
		n, err = lz4.UncompressBlock(body, out)
		out = out[:max(n, 0)]
	case CompressionZstd:
		var dec *zstd.Decoder
		if dec, err = getZstdDecoder(); err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		out, err = dec.DecodeAll(body, make([]byte, 0, rawLen))
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompress, uint8(c))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s body: %w", ErrCorrupt, c, err)
	}
	if len(out) != rawLen {
		return nil, fmt.Errorf("%w: decompressed size %d, expected %d", ErrCorrupt, len(out), rawLen)
	}
	return out, nil
}

// lz4Literal encodes data as a single literal-only LZ4 sequence.
func lz4Literal(data []byte) []byte {
	n := len(data)
	out := make([]byte, 0, n+n/255+2)
	if n < 15 {
		out = append(out, byte(n<<4))
	} else {
		out = append(out, 0xF0)
		rest := n - 15
		for rest >= 255 {
			out = append(out, 255)
			rest -= 255
		}
		out = append(out, byte(rest))
	}
	return append(out, data...)
}
