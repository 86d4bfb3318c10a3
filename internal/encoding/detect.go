// Package encoding normalizes uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

// Charset names reported by Decode.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88591    = "ISO-8859-1"
	ISO885915   = "ISO-8859-15"
	ISO88599    = "ISO-8859-9"
)

var boms = []struct {
	prefix  []byte
	charset string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// decoders maps legacy charsets to their x/text decoder. ISO-8859-1 is read
// as Windows-1252, its superset for printable characters.
var decoders = map[string]xenc.Encoding{
	Windows1252: charmap.Windows1252,
	ISO88591:    charmap.Windows1252,
	ISO885915:   charmap.ISO8859_15,
	ISO88599:    charmap.ISO8859_9,
	UTF16LE:     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	UTF16BE:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
}

// Decoded is UTF-8 content plus the charset it was decoded from.
type Decoded struct {
	io.Reader
	Charset string
}

// Decode sniffs the start of r and returns a reader producing UTF-8. A BOM
// wins, then valid UTF-8, then chardet's best guess; anything else is read
// as Windows-1252.
func Decode(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(head, bom.prefix) {
			continue
		}

		if bom.charset == UTF8 {
			_, _ = br.Discard(len(bom.prefix))
			return &Decoded{Reader: br, Charset: UTF8}, nil
		}

		return decoded(br, bom.charset), nil
	}

	if utf8.Valid(trimPartialRune(head)) {
		return &Decoded{Reader: br, Charset: UTF8}, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == UTF8 {
			return &Decoded{Reader: br, Charset: UTF8}, nil
		}

		if _, ok := decoders[res.Charset]; ok {
			return decoded(br, res.Charset), nil
		}
	}

	return decoded(br, Windows1252), nil
}

func decoded(r io.Reader, charset string) *Decoded {
	return &Decoded{
		Reader:  transform.NewReader(r, decoders[charset].NewDecoder()),
		Charset: charset,
	}
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
