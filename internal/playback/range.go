package playback

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range format")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Section is the part of a clip answered by a 206 response.
type Section struct {
	Offset int64
	Length int64
}

// ContentRange formats the Content-Range header value for a clip of size bytes.
func (s Section) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", s.Offset, s.Offset+s.Length-1, size)
}

// Reader limits r to the section.
func (s Section) Reader(r io.ReaderAt) *io.SectionReader {
	return io.NewSectionReader(r, s.Offset, s.Length)
}

// RequestedSection reads a Range header for a clip of size bytes. ok is false
// when no range was asked for and the whole clip should be sent. Players seek
// with one range at a time, so only the first of a list is used.
func RequestedSection(header string, size int64) (sec Section, ok bool, err error) {
	if header == "" {
		return Section{}, false, nil
	}

	set, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return Section{}, false, ErrInvalidRange
	}
	if i := strings.IndexByte(set, ','); i >= 0 {
		set = set[:i]
	}

	from, to, found := strings.Cut(strings.TrimSpace(set), "-")
	if !found {
		return Section{}, false, ErrInvalidRange
	}

	// "-N" asks for the trailing N bytes, which is how players fetch a moov
	// atom stored at the end of an mp4.
	if from == "" {
		n, err := parseOffset(to)
		if err != nil || n == 0 {
			return Section{}, false, ErrInvalidRange
		}
		if size == 0 {
			return Section{}, false, ErrUnsatisfiable
		}
		n = min(n, size)
		return Section{Offset: size - n, Length: n}, true, nil
	}

	start, err := parseOffset(from)
	if err != nil {
		return Section{}, false, ErrInvalidRange
	}
	if start >= size {
		return Section{}, false, ErrUnsatisfiable
	}

	end := size - 1
	if to != "" {
		last, err := parseOffset(to)
		if err != nil {
			return Section{}, false, ErrInvalidRange
		}
		if last < start {
			return Section{}, false, ErrUnsatisfiable
		}
		end = min(last, end)
	}
	return Section{Offset: start, Length: end - start + 1}, true, nil
}

// parseOffset accepts only plain non-negative decimal byte positions.
func parseOffset(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrInvalidRange
	}
	return strconv.ParseInt(s, 10, 64)
}
