package loader

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding is one candidate text encoding tried by the loader.
type Encoding struct {
	Name   string
	decode func([]byte) ([]byte, error)
}

// Decode converts data to UTF-8, failing when data is not valid in this encoding.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	return e.decode(data)
}

// Candidate encodings, keyed by the names accepted in IMPORT_ENCODINGS.
var (
	UTF8      = Encoding{Name: "utf-8", decode: decodeUTF8}
	Latin1    = Encoding{Name: "latin1", decode: charmapDecoder(charmap.ISO8859_1)}
	CP1252    = Encoding{Name: "cp1252", decode: charmapDecoder(charmap.Windows1252)}
	ISO8859_1 = Encoding{Name: "iso-8859-1", decode: charmapDecoder(charmap.ISO8859_1)}
)

// DefaultEncodings is the fallback order used when none is configured.
var DefaultEncodings = []Encoding{UTF8, Latin1, CP1252, ISO8859_1}

var encodingsByName = map[string]Encoding{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"latin1":       Latin1,
	"latin-1":      Latin1,
	"cp1252":       CP1252,
	"windows-1252": CP1252,
	"iso-8859-1":   ISO8859_1,
	"iso8859-1":    ISO8859_1,
}

// ParseEncodings resolves configured encoding names, preserving their order.
func ParseEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		return DefaultEncodings, nil
	}

	result := make([]Encoding, 0, len(names))
	for _, name := range names {
		enc, ok := encodingsByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown encoding %q", name)
		}
		result = append(result, enc)
	}
	return result, nil
}

func decodeUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid utf-8 byte sequence")
	}
	return data, nil
}

// charmapDecoder rejects output containing U+FFFD, which the charmap tables
// use for bytes the code page leaves undefined.
func charmapDecoder(cm *charmap.Charmap) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		out, err := decodeWith(cm, data)
		if err != nil {
			return nil, err
		}
		if bytes.ContainsRune(out, utf8.RuneError) {
			return nil, fmt.Errorf("byte undefined in %s", cm.String())
		}
		return out, nil
	}
}

func decodeWith(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
