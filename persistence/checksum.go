package persistence

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial, which Go
// accelerates in hardware where available.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC32-Castagnoli checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// ErrChecksumMismatch matches every *ChecksumMismatchError via errors.Is.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumMismatchError is returned when frame verification fails.
//
// CRC32C detects accidental corruption only; it is not tamper-proof.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return ErrChecksumMismatch }

// IsChecksumMismatch returns true if err is a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}

func verify(data []byte, expected uint32) error {
	if actual := Checksum(data); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
