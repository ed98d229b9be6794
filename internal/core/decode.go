package core

// decode.go turns a transported payload into UTF-8 CSV text.
//
// Vendor exports arrive in whatever encoding the vendor's platform favours:
// UTF-8 with or without a byte order mark, UTF-16 from Windows tools, and
// the odd Windows-1252 file from older desktop managers. Everything is
// normalised to UTF-8 before a single row is read.

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidPayload is returned when a payload is not valid base64.
var ErrInvalidPayload = errors.New("invalid payload encoding")

// DecodeBase64Payload decodes a base64 payload. A data URL prefix
// ("data:text/csv;base64,") is accepted and stripped.
func DecodeBase64Payload(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)

	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}

// DecodeText converts raw file bytes to UTF-8 without a byte order mark.
//
// A UTF-8 or UTF-16 byte order mark selects the encoding. Without one, valid
// UTF-8 is kept as is and anything else is read as Windows-1252.
func DecodeText(data []byte) ([]byte, error) {
	if hasUTF16BOM(data) || bytes.HasPrefix(data, utf8BOM) {
		// BOMOverride switches to the encoding named by the mark and drops it.
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, fmt.Errorf("encoding error: %w", err)
		}
		return out, nil
	}

	if utf8.Valid(data) {
		return data, nil
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return out, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}
