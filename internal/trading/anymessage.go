package trading

import (
	"encoding/binary"
	"strconv"
)

// Protobuf wire types this walker classifies. Only 0, 1, 2 and 5 are valid on
// the wire; anything else aborts the decode.
const (
	wireVarint     = 0
	wireFixed64    = 1
	wireBytes      = 2
	wireFixed32    = 5
)

// decodeAnyMessage walks a buffer as an unknown-schema protobuf message,
// returning a tree keyed by stringified field number. This is a hand-rolled
// walker, not a dynamic-protobuf dependency: the extractor only ever reads
// field numbers 1, 2 and 3, so a minimal wire-type classifier is sufficient
// and, per spec, preferable to dragging in a full reflective decoder for this
// component.
//
// Length-delimited (wire type 2) fields are speculatively decoded as nested
// messages; a segment that doesn't parse as one is kept as raw bytes. A field
// number observed more than once becomes a list in the result, matching how
// schemaless protobuf decoders typically infer "repeated" from multiplicity:
// a field that happens to occur exactly once is indistinguishable from an
// optional singular field and is kept scalar, not wrapped in a one-element
// list. Callers that expect a repeated field (e.g. a listing entries array)
// must check for this and treat a lone occurrence as absent, mirroring the
// same limitation in the reference decoder this was ported from.
func decodeAnyMessage(data []byte) (map[string]interface{}, error) {
	type slot struct {
		key   string
		value interface{}
	}
	var slots []slot
	counts := make(map[string]int)

	idx := 0
	for idx < len(data) {
		tag, next, err := readVarint(data, idx)
		if err != nil {
			return nil, err
		}
		fieldNum := tag >> 3
		wireType := tag & 0x7
		key := strconv.FormatUint(fieldNum, 10)

		var value interface{}
		switch wireType {
		case wireVarint:
			v, n, err := readVarint(data, next)
			if err != nil {
				return nil, err
			}
			value = int64(v)
			next = n
		case wireFixed64:
			if next+8 > len(data) {
				return nil, errTruncatedVarint
			}
			value = binary.LittleEndian.Uint64(data[next : next+8])
			next += 8
		case wireBytes:
			length, n, err := readVarint(data, next)
			if err != nil {
				return nil, err
			}
			end := n + int(length)
			if end < n || end > len(data) {
				return nil, errTruncatedVarint
			}
			segment := data[n:end]
			if nested, err := decodeAnyMessage(segment); err == nil {
				value = nested
			} else {
				value = append([]byte(nil), segment...)
			}
			next = end
		case wireFixed32:
			if next+4 > len(data) {
				return nil, errTruncatedVarint
			}
			value = binary.LittleEndian.Uint32(data[next : next+4])
			next += 4
		default:
			return nil, errTruncatedVarint
		}

		slots = append(slots, slot{key: key, value: value})
		counts[key]++
		idx = next
	}

	out := make(map[string]interface{}, len(counts))
	seenList := make(map[string][]interface{})
	for _, s := range slots {
		if counts[s.key] > 1 {
			seenList[s.key] = append(seenList[s.key], s.value)
			out[s.key] = seenList[s.key]
		} else {
			out[s.key] = s.value
		}
	}
	return out, nil
}
