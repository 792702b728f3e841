package value

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON text for a Value: object
// keys sorted by UTF-16 code units, strings NFC-normalized, no HTML
// escaping, and no escaping of U+2028/U+2029. This is the form used
// when a structured parameter is stored as text and when manifests are
// rewritten, so the stored bytes are deterministic.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const hexDigits = "0123456789abcdef"

// marshalString writes a JSON string literal. Only the quote, the
// backslash, and control characters are escaped; <, >, &, U+2028 and
// U+2029 pass through verbatim, which keeps the output canonical and
// byte-stable across encoders. Invalid UTF-8 is replaced rather than
// rejected, matching the codec's lossy text policy.
func marshalString(s string, canonical bool) ([]byte, error) {
	if canonical {
		s = norm.NFC.String(s)
	}
	s = strings.ToValidUTF8(s, "�")

	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			buf = append(buf, '\\', c)
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 0x20:
			buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, '"')
	return buf, nil
}
