// Package persistence encodes fitted model state into self-describing frames.
//
// A frame is laid out little-endian as
//
//	magic   uint32  "TVM1"
//	version uint16
//	kind    uint8   estimator kind
//	comp    uint8   none | lz4 | zstd
//	codec   uint8 length + name
//	rawLen  uint32  uncompressed body length
//	bodyLen uint32
//	body    []byte  codec-encoded state, possibly compressed
//	crc     uint32  CRC32-Castagnoli of every preceding byte
//
// The codec name selects the decoder on load, so frames written with any
// built-in codec remain readable.
package persistence
