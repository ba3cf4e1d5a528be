package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxBytes bounds one inbound frame when no explicit limit is configured.
const DefaultMaxBytes = 4096

var ErrFrameTooLarge = errors.New("frame: line exceeds size limit")

// ReadLine reads one newline-terminated frame of at most limit bytes.
// A peer that closes before sending anything yields an empty frame and no error.
// A peer that closes mid-line yields the bytes received so far.
func ReadLine(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	br := bufio.NewReaderSize(r, 256)
	var buf []byte
	for {
		chunk, err := br.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > limit {
			return buf[:limit], ErrFrameTooLarge
		}
		switch {
		case err == nil:
			return buf, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return buf, nil
		default:
			return buf, err
		}
	}
}

// Extract strips the binary preamble the controller prepends and returns the
// textual payload starting at the first ASCII letter. Invalid UTF-8 is dropped.
// A frame without any letter yields "".
func Extract(raw []byte) string {
	start := -1
	for i, b := range raw {
		if isLetter(b) {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(raw[start:]), ""))
}

// Hex renders raw bytes as "18 27 01 6C ..." for debug logs.
func Hex(raw []byte) string {
	var b strings.Builder
	for i, c := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
