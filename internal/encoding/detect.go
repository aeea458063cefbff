package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader returns a reader that yields the input as UTF-8.
//
// Bank exports arrive as UTF-8 (with or without BOM), UTF-16 or one of the
// Latin code pages. Detection order:
//  1. BOM (UTF-8 BOM is stripped, UTF-16 LE/BE is decoded)
//  2. valid UTF-8 is passed through
//  3. chardet heuristics
//  4. Windows-1252
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	if validUTF8(buf, len(buf) == sniffSize) {
		return br, nil
	}

	dec := decoderFor(detectCharset(buf))
	if dec == nil {
		return br, nil
	}

	return transform.NewReader(br, dec.NewDecoder()), nil
}

// validUTF8 reports whether buf is UTF-8. A truncated sniff may end in the
// middle of a rune, so up to utf8.UTFMax-1 trailing bytes are forgiven.
func validUTF8(buf []byte, truncated bool) bool {
	if utf8.Valid(buf) {
		return true
	}

	if !truncated {
		return false
	}

	for i := 1; i < utf8.UTFMax && i < len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) {
			return true
		}
	}

	return false
}

func detectCharset(buf []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err != nil {
		return ""
	}

	return result.Charset
}

// decoderFor maps a chardet charset name to a decoder. A nil encoding means
// the content is already UTF-8.
func decoderFor(charset string) encoding.Encoding {
	switch charset {
	case "UTF-8":
		return nil
	case "ISO-8859-15":
		return charmap.ISO8859_15
	case "ISO-8859-9":
		return charmap.ISO8859_9
	default:
		return charmap.Windows1252
	}
}
