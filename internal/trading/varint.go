package trading

import "errors"

// errTruncatedVarint is returned when the buffer ends before the varint's
// continuation bit clears. decodeAnyMessage also returns it for a truncated
// fixed-width or length-delimited field and for an unsupported wire type.
// Callers treat this as a local resync signal, not a fatal error.
var errTruncatedVarint = errors.New("trading: unexpected end of buffer while decoding varint")

// readVarint decodes a standard protobuf unsigned varint (7 bits per byte,
// little-endian in the shift, MSB as the continuation bit) starting at start.
// Returns the decoded value and the index immediately after the varint.
func readVarint(data []byte, start int) (value uint64, next int, err error) {
	shift := uint(0)
	pos := start
	for pos < len(data) {
		b := data[pos]
		value |= uint64(b&0x7f) << shift
		pos++
		if b&0x80 == 0 {
			return value, pos, nil
		}
		shift += 7
	}
	return 0, start, errTruncatedVarint
}
