package protocol

import "bytes"

// Splitter reassembles newline-delimited frames from a byte stream. Reads may
// end mid-frame; the tail is carried over to the next Feed.
type Splitter struct {
	buf []byte
	max int
	// discarding is set after an oversized frame until its newline arrives.
	discarding bool
}

// NewSplitter returns a Splitter that rejects un-terminated frames longer than
// max bytes. A max of zero disables the limit.
func NewSplitter(max int) *Splitter {
	return &Splitter{max: max}
}

// Feed appends data and returns every complete, non-empty frame in order.
// When the pending tail outgrows the limit it is discarded and
// ErrFrameTooLarge is returned alongside any frames already completed. The
// rest of that frame, up to its newline, is dropped on later Feeds.
func (s *Splitter) Feed(data []byte) ([][]byte, error) {
	if s.discarding {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil, nil
		}
		data = data[i+1:]
		s.discarding = false
	}
	s.buf = append(s.buf, data...)

	var frames [][]byte
	for {
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSpace(s.buf[:i])
		if len(line) > 0 {
			frames = append(frames, append([]byte(nil), line...))
		}
		s.buf = s.buf[i+1:]
	}

	if len(s.buf) == 0 {
		s.buf = nil
	} else if s.max > 0 && len(s.buf) > s.max {
		s.buf = nil
		s.discarding = true
		return frames, ErrFrameTooLarge
	}
	return frames, nil
}

// Pending reports how many bytes of an incomplete frame are buffered.
func (s *Splitter) Pending() int { return len(s.buf) }
