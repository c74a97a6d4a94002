package codec

// text.go normalises uploaded text before a codec sees it.
//
// Spreadsheet exports commonly carry a UTF-8 byte order mark and the odd
// invalid byte. Both are handled on the fly: the BOM is stripped and invalid
// sequences become U+FFFD, so codecs only ever read valid UTF-8.

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r so it yields BOM-free, valid UTF-8.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// CleanCell trims whitespace and unwraps Excel's ="..." text guard.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
