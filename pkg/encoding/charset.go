// Package encoding provides text encoding utilities for map text files.
package encoding

import (
	"fmt"
	"io"
	"strings"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names a supported text encoding.
type Charset string

// Supported charsets. Older map files were written by editors using the
// platform default, usually Latin-1 or Windows-1252.
const (
	UTF8        Charset = "utf-8"
	ISO88591    Charset = "iso-8859-1"
	Windows1252 Charset = "windows-1252"
)

var charsetAliases = map[string]Charset{
	"utf-8":        UTF8,
	"utf8":         UTF8,
	"":             UTF8,
	"iso-8859-1":   ISO88591,
	"iso8859-1":    ISO88591,
	"latin1":       ISO88591,
	"latin-1":      ISO88591,
	"windows-1252": Windows1252,
	"cp1252":       Windows1252,
}

// ParseCharset resolves a charset name or alias. Empty means UTF-8.
func ParseCharset(name string) (Charset, error) {
	cs, ok := charsetAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unsupported charset %q", name)
	}
	return cs, nil
}

// decoder returns the x/text decoder for cs. UTF-8 input may carry a BOM.
func (cs Charset) decoder() *xenc.Decoder {
	switch cs {
	case ISO88591:
		return charmap.ISO8859_1.NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	default:
		return unicode.UTF8BOM.NewDecoder()
	}
}

// encoder returns nil for UTF-8, which needs no conversion.
// Runes the charset cannot represent are replaced.
func (cs Charset) encoder() *xenc.Encoder {
	switch cs {
	case ISO88591:
		return xenc.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	case Windows1252:
		return xenc.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	default:
		return nil
	}
}

// NewReader wraps r so that reads yield UTF-8.
func (cs Charset) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, cs.decoder())
}

// NewWriter wraps w so that UTF-8 writes are stored in cs.
// The returned writer must be closed to flush pending bytes; closing does
// not close w.
func (cs Charset) NewWriter(w io.Writer) io.WriteCloser {
	enc := cs.encoder()
	if enc == nil {
		return nopCloser{w}
	}
	return transform.NewWriter(w, enc)
}

// Decode converts data in cs to a UTF-8 string.
// Returns the data as-is if conversion fails.
func (cs Charset) Decode(data []byte) string {
	result, _, err := transform.Bytes(cs.decoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// Encode converts a UTF-8 string to cs.
func (cs Charset) Encode(s string) []byte {
	enc := cs.encoder()
	if enc == nil {
		return []byte(s)
	}
	result, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
