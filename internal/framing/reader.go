package framing

import "encoding/binary"

// pendingStream is one level of the explicit recursion stack: a FrameDown
// body's decompressed nested stream, or the root capture buffer.
type pendingStream struct {
	data   []byte
	offset int
}

// FrameReader incrementally parses a capture buffer into NotifyFrame values.
// It tolerates malformed data by sliding the parse cursor one byte at a time
// until a plausible header reappears (spec's central resilience property).
// A FrameReader is single-use: construct one per buffer via NewFrameReader.
type FrameReader struct {
	stats *FramerStats
	stack []*pendingStream
}

// NewFrameReader prepares a reader over a whole capture buffer. The buffer is
// held by reference and never copied; only decompressed nested streams
// allocate new backing arrays.
func NewFrameReader(data []byte) *FrameReader {
	stats := newFramerStats()
	stats.BytesScanned = len(data)
	return &FrameReader{
		stats: stats,
		stack: []*pendingStream{{data: data}},
	}
}

// Next pulls the next NotifyFrame from the buffer, recursing into FrameDown
// fragments depth-first as they are encountered. Returns (nil, false) once
// the entire buffer (including all nested FrameDown streams) is exhausted.
func (r *FrameReader) Next() (*NotifyFrame, bool) {
	for len(r.stack) > 0 {
		if nf := r.step(); nf != nil {
			return nf, true
		}
	}
	return nil, false
}

// Stats returns a snapshot of the counters accumulated so far. Safe to call
// mid-parse or after exhaustion.
func (r *FrameReader) Stats() FramerStats {
	hist := make(map[FragmentType]int, len(r.stats.FragmentHistogram))
	for k, v := range r.stats.FragmentHistogram {
		hist[k] = v
	}
	snapshot := *r.stats
	snapshot.FragmentHistogram = hist
	return snapshot
}

// step processes frames at the top of the recursion stack until it either
// produces a NotifyFrame, pushes a nested FrameDown stream (the caller's loop
// then operates on the new top), or exhausts and pops the current stream.
func (r *FrameReader) step() *NotifyFrame {
	top := r.stack[len(r.stack)-1]
	for {
		if top.offset+headerSize > len(top.data) {
			r.stack = r.stack[:len(r.stack)-1]
			return nil
		}

		length := binary.BigEndian.Uint32(top.data[top.offset:])
		pktType := binary.BigEndian.Uint16(top.data[top.offset+4:])
		fragmentType := FragmentType(pktType & fragmentTypeMask)
		isZstd := pktType&zstdFlag != 0

		if length < headerSize || top.offset+int(length) > len(top.data) {
			top.offset++
			r.stats.ResyncEvents++
			continue
		}

		end := top.offset + int(length)
		body := top.data[top.offset+headerSize : end]
		frameOffset := top.offset
		r.stats.FramesParsed++
		r.stats.bumpHistogram(fragmentType)
		top.offset = end

		switch fragmentType {
		case FragmentNotify:
			nf := r.parseNotify(body, isZstd, frameOffset)
			if nf == nil {
				continue
			}
			r.stats.NotifyFrames++
			return nf

		case FragmentFrameDown:
			// A body of frameDownSeqSize or fewer bytes carries no nested
			// content; this is valid (not malformed) framing, so no resync
			// is counted - only the outer frame's counters, already bumped
			// above.
			if len(body) <= frameDownSeqSize {
				continue
			}
			nested := body[frameDownSeqSize:]
			decompressed, _, overflowed, badMagic, failed := maybeDecompress(nested, isZstd)
			if overflowed || failed {
				r.stats.ResyncEvents++
			}
			if badMagic {
				r.stats.ZstdFlagWithoutMagic++
			}
			if len(decompressed) == 0 {
				continue
			}
			if len(r.stack) >= maxRecursionDepth {
				r.stats.ResyncEvents++
				continue
			}
			r.stack = append(r.stack, &pendingStream{data: decompressed})
			return nil

		default:
			continue
		}
	}
}

// parseNotify extracts the routing header and payload from a Notify body,
// decompressing the payload tail when flagged. Returns nil (counted as a
// resync) when the body is too short to hold the fixed-size header.
func (r *FrameReader) parseNotify(body []byte, isZstd bool, frameOffset int) *NotifyFrame {
	if len(body) < notifyHeaderSize {
		r.stats.ResyncEvents++
		return nil
	}

	serviceUID := binary.BigEndian.Uint64(body[0:8])
	stubID := binary.BigEndian.Uint32(body[8:12])
	methodID := binary.BigEndian.Uint32(body[12:16])
	rawPayload := body[16:]

	payload, wasDecompressed, overflowed, badMagic, failed := maybeDecompress(rawPayload, isZstd)
	if overflowed || failed {
		r.stats.ResyncEvents++
	}
	if badMagic {
		r.stats.ZstdFlagWithoutMagic++
	}

	return &NotifyFrame{
		ServiceUID:    serviceUID,
		StubID:        stubID,
		MethodID:      methodID,
		Payload:       payload,
		WasCompressed: wasDecompressed,
		Offset:        frameOffset,
	}
}
