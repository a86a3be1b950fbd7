package ffmpeg

import (
	"bufio"
	"errors"
	"io"
)

// JPEG markers.
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
)

var errFrameTooLarge = errors.New("jpeg frame exceeds size limit")

// mjpegReader splits a concatenated MJPEG byte stream into JPEG images.
// Bytes outside SOI..EOI are skipped. Inside entropy-coded data 0xFF is
// always stuffed, so the first FFD9 after an SOI ends the image.
type mjpegReader struct {
	r       *bufio.Reader
	maxSize int
}

func newMJPEGReader(r io.Reader, maxSize int) *mjpegReader {
	return &mjpegReader{r: bufio.NewReaderSize(r, 64<<10), maxSize: maxSize}
}

// Next returns the next complete JPEG. It returns io.EOF at a clean end of
// stream and io.ErrUnexpectedEOF if the stream ends inside an image.
// errFrameTooLarge is returned after discarding an oversized image; the
// reader can keep going.
func (m *mjpegReader) Next() ([]byte, error) {
	var prev byte
	for {
		b, err := m.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if prev == markerPrefix && b == markerSOI {
			break
		}
		prev = b
	}

	buf := make([]byte, 2, 64<<10)
	buf[0], buf[1] = markerPrefix, markerSOI
	prev = 0
	for {
		b, err := m.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf = append(buf, b)
		if prev == markerPrefix && b == markerEOI {
			return buf, nil
		}
		if m.maxSize > 0 && len(buf) > m.maxSize {
			return nil, errFrameTooLarge
		}
		prev = b
	}
}
