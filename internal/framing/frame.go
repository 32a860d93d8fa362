// Package framing implements the resynchronizing capture framer: it walks a
// raw BPSR network capture buffer and yields application-level NotifyFrame
// values, tolerating malformed or truncated fragments by sliding the parse
// cursor one byte at a time until a plausible header reappears.
package framing

import "fmt"

// FragmentType is the low 15 bits of a frame's pkt_type field.
type FragmentType uint16

const (
	// FragmentNotify carries a top-level application message.
	FragmentNotify FragmentType = 0x0002
	// FragmentFrameDown carries a server sequence id and either nested
	// frames or a length-delimited listing stream.
	FragmentFrameDown FragmentType = 0x0006
)

// String renders the fragment type name, or a numeric placeholder for types
// outside the two this parser interprets.
func (ft FragmentType) String() string {
	switch ft {
	case FragmentNotify:
		return "NOTIFY"
	case FragmentFrameDown:
		return "FRAME_DOWN"
	default:
		return fmt.Sprintf("FRAGMENT(0x%04x)", uint16(ft))
	}
}

const (
	headerSize         = 6 // length:u32 + pkt_type:u16
	notifyHeaderSize   = 16 // service_uid:u64 + stub_id:u32 + method_id:u32
	frameDownSeqSize   = 4  // server_sequence:u32
	zstdFlag           = uint16(0x8000)
	fragmentTypeMask   = uint16(0x7fff)
	maxRecursionDepth  = 8
)

// NotifyFrame is a successfully parsed application-level message.
type NotifyFrame struct {
	ServiceUID    uint64
	StubID        uint32
	MethodID      uint32
	Payload       []byte
	WasCompressed bool
	Offset        int
}

// FramerStats accumulates counters across one parse. Counters are owned by a
// single FrameReader and are never shared across goroutines.
type FramerStats struct {
	BytesScanned         int
	FramesParsed         int
	NotifyFrames         int
	ResyncEvents         int
	ZstdFlagWithoutMagic int
	FragmentHistogram    map[FragmentType]int
}

func newFramerStats() *FramerStats {
	return &FramerStats{FragmentHistogram: make(map[FragmentType]int)}
}

func (s *FramerStats) bumpHistogram(ft FragmentType) {
	s.FragmentHistogram[ft]++
}
