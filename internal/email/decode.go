package email

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"

	"github.com/emersion/go-message/charset"
)

var wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

// DecodeSubject decodes RFC 2047 encoded-words in a header value. Values
// that fail to decode are returned unchanged.
func DecodeSubject(raw string) string {
	decoded, err := wordDecoder.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// DecodeQuotedPrintable decodes a quoted-printable body. Malformed escapes
// are kept literally.
func DecodeQuotedPrintable(body []byte) (string, error) {
	data, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
	if err != nil {
		return "", fmt.Errorf("decode quoted-printable: %w", err)
	}
	return string(data), nil
}
