// Package trading extracts BPSR trading-house listings directly from a raw
// capture buffer. Unlike the combat path (internal/framing + internal/combat)
// it never builds NotifyFrame values: listing blocks live inside FrameDown
// bodies as a concatenation of length-delimited protobuf messages, not a
// cascade of further framed fragments, so this package re-walks the raw
// bytes with its own simpler iterator.
package trading

import (
	"encoding/binary"

	"github.com/jordieb/bpsr-labs-go/internal/framing"
)

const (
	tagByteListing = 0x0a // field 1, wire type 2 (length-delimited)
)

// Listing is a single trading-house entry observed in one capture fragment.
type Listing struct {
	FrameOffset    int
	ServerSequence uint32
	PriceLuno      int64
	Quantity       int64
	ItemConfigID   *int64
	RawEntry       map[string]interface{}
}

// topLevelFrame is one (offset, length, fragmentType, isZstd, body) tuple
// from a raw walk of the capture buffer.
type topLevelFrame struct {
	offset       int
	length       int
	fragmentType uint16
	isZstd       bool
	body         []byte
}

// iterFrames yields every top-level frame in data, regardless of fragment
// type. This mirrors the outer envelope parsing of the combat framer but
// intentionally uses a looser validity check (length == 0, not length < 6):
// the trading path only needs FrameDown envelopes to be well-formed enough to
// extract a body, and matching the original decoder's own independent
// implementation here keeps the two re-scans' disagreements (if any) a
// visible, testable property rather than a silent behavioral merge.
func iterFrames(data []byte) []topLevelFrame {
	var frames []topLevelFrame
	offset := 0
	end := len(data)
	for offset+6 <= end {
		length := int(binary.BigEndian.Uint32(data[offset:]))
		if length == 0 || offset+length > end {
			offset++
			continue
		}
		pktType := binary.BigEndian.Uint16(data[offset+4:])
		bodyEnd := offset + length
		if length < 6 {
			bodyEnd = offset + 6 // lengths 1..5 yield an empty body
		}
		body := data[offset+6 : bodyEnd]
		isZstd := pktType&0x8000 != 0
		frames = append(frames, topLevelFrame{
			offset:       offset,
			length:       length,
			fragmentType: pktType & 0x7fff,
			isZstd:       isZstd,
			body:         body,
		})
		offset += length
	}
	return frames
}

// ExtractListings scans the whole capture buffer for FrameDown fragments
// carrying length-delimited listing blocks and returns every Listing found,
// in capture order.
func ExtractListings(data []byte) []Listing {
	var listings []Listing
	for _, f := range iterFrames(data) {
		if f.fragmentType != 0x0006 || len(f.body) <= 4 {
			continue
		}
		serverSeq := binary.BigEndian.Uint32(f.body[0:4])
		nested, _, _, _, _ := framing.MaybeDecompress(f.body[4:], f.isZstd)
		if len(nested) == 0 {
			continue
		}
		listings = append(listings, extractFromNested(nested, f.offset, serverSeq)...)
	}
	return listings
}

// extractFromNested scans a decompressed FrameDown payload for 0x0A-tagged
// length-delimited messages, decoding each as an unknown-schema protobuf tree
// and pulling out well-typed listing entries. A bad varint or a malformed
// message advances the scan cursor by exactly one byte and resumes, mirror-
// ing the framer's own byte-slide resync discipline at the varint/schema
// level. A declared length past the end of the buffer abandons the rest of
// this nested block.
func extractFromNested(nested []byte, frameOffset int, serverSeq uint32) []Listing {
	var out []Listing
	idx := 0
	for idx < len(nested) {
		if nested[idx] != tagByteListing {
			idx++
			continue
		}
		msgLen, next, err := readVarint(nested, idx+1)
		if err != nil {
			idx++
			continue
		}
		end := next + int(msgLen)
		if end < next || end > len(nested) {
			break
		}
		segment := nested[idx:end]

		decoded, err := decodeAnyMessage(segment)
		if err != nil {
			idx++
			continue
		}
		idx = end
		inner, ok := decoded["1"].(map[string]interface{})
		if !ok {
			continue
		}
		entriesAny, ok := inner["2"]
		if !ok {
			continue
		}
		entries, ok := entriesAny.([]interface{})
		if !ok || len(entries) == 0 {
			continue
		}

		for _, e := range entries {
			entry, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			price, ok1 := entry["1"].(int64)
			quantity, ok2 := entry["2"].(int64)
			details, ok3 := entry["3"].(map[string]interface{})
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			itemIDRaw, hasItemID := details["2"]
			if !hasItemID {
				continue
			}
			var itemID *int64
			if v, ok := itemIDRaw.(int64); ok {
				itemID = &v
			}

			out = append(out, Listing{
				FrameOffset:    frameOffset,
				ServerSequence: serverSeq,
				PriceLuno:      price,
				Quantity:       quantity,
				ItemConfigID:   itemID,
				RawEntry:       entry,
			})
		}
	}
	return out
}
