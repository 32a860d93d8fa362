package framing

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = [4]byte{0x28, 0xb5, 0x2f, 0xfd}

const (
	maxWindowSize      = 1 << 23        // 8 MiB, hard safety bound
	maxDecompressedLen = 10 * 1024 * 1024 // 10 MiB, hard safety bound
	decompressChunk    = 16 * 1024
)

// maybeDecompress mirrors framing.py's _maybe_decompress: it only acts when
// flagged is true and data carries the zstd magic prefix. Any failure -
// missing magic, corrupt stream, or an output that would exceed the 10 MiB
// cap - returns the original bytes unchanged and reports which counter the
// caller should bump. This must never be replaced by a one-shot "decode all"
// call: that API has no way to enforce the output cap.
func maybeDecompress(data []byte, flagged bool) (out []byte, wasDecompressed bool, overflowed bool, badMagic bool, failed bool) {
	return MaybeDecompress(data, flagged)
}

// MaybeDecompress is the exported form of the same bounded zstd decompress,
// reused by internal/trading, which re-walks the raw capture independently
// of the NotifyFrame path but still needs the same safety bounds. failed
// reports a genuine decompression error - a stream that carries the zstd
// magic but fails to construct a reader or errors mid-read - which per
// spec.md §4.2 counts as a resync event, distinct from badMagic (flag set,
// magic absent: not an error at all) and overflowed (a valid stream that
// would exceed the output cap).
func MaybeDecompress(data []byte, flagged bool) (out []byte, wasDecompressed bool, overflowed bool, badMagic bool, failed bool) {
	if !flagged || len(data) == 0 {
		return data, false, false, false, false
	}
	if !bytes.HasPrefix(data, zstdMagic[:]) {
		return data, false, false, true, false
	}

	dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxWindow(maxWindowSize))
	if err != nil {
		return data, false, false, false, true
	}
	defer dec.Close()

	var buf bytes.Buffer
	chunk := make([]byte, decompressChunk)
	for {
		n, rerr := dec.Read(chunk)
		if n > 0 {
			if buf.Len()+n > maxDecompressedLen {
				return data, false, true, false, false
			}
			buf.Write(chunk[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return data, false, false, false, true
		}
	}
	return buf.Bytes(), true, false, false, false
}
