package loader

import (
	"bytes"
	"io"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and drops a leading UTF-8 BOM.
// Spreadsheet exports on Windows commonly start with one, and it would
// otherwise end up glued to the first header name.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call peeks at up to three bytes.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var head [3]byte
		n, err := io.ReadFull(r.reader, head[:])
		switch err {
		case nil, io.EOF, io.ErrUnexpectedEOF:
		default:
			return 0, err
		}
		if n == 3 && bytes.Equal(head[:], bomUTF8) {
			n = 0
		}
		r.pending = append(r.pending, head[:n]...)
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}
