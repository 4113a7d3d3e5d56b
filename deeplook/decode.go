package deeplook

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EncodingAuto selects the source charset from its byte-order mark and content.
const EncodingAuto = "auto"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText converts raw source bytes to UTF-8 text. With EncodingAuto a BOM
// decides (UTF-8 or UTF-16), valid UTF-8 is taken as is, and anything else is read
// as CP949, the charset spreadsheet tools use for Korean CSV exports.
func DecodeText(data []byte, charset string) (string, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" || strings.EqualFold(charset, EncodingAuto) {
		return decodeAuto(data)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", charset, err)
	}
	return decodeWith(enc, data)
}

func decodeAuto(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8), bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("decode bom text: %w", err)
		}
		return string(out), nil
	case utf8.Valid(data):
		return string(data), nil
	default:
		return decodeWith(korean.EUCKR, data)
	}
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

// NormalizeName composes a source name to NFC so names read from decomposed
// file systems compare equal to typed ones. Names that are not valid UTF-8 are
// read as CP949, the charset of names extracted from Korean Windows archives;
// bytes that still do not decode become U+FFFD.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) {
		if decoded, err := korean.EUCKR.NewDecoder().String(name); err == nil {
			name = decoded
		}
		name = strings.ToValidUTF8(name, "\uFFFD")
	}
	return norm.NFC.String(name)
}

// NormalizeText performs compatibility normalization and drops control characters
// other than newlines and tabs.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

// searchKey folds text for case-insensitive substring search.
func searchKey(text string) string {
	return strings.ToLower(NormalizeText(text))
}
