package email

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// Compose describes a message for BuildMessage. A Subject that is already
// ASCII (including pre-encoded words) is written verbatim.
type Compose struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
	Date    time.Time
}

// BuildMessage renders an RFC 5322 message with quoted-printable bodies.
// With both Text and HTML set the result is multipart/alternative.
func BuildMessage(in Compose) ([]byte, error) {
	if in.From == "" {
		return nil, fmt.Errorf("from address is required")
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var buf bytes.Buffer

	writeHeader(&buf, "From", in.From)
	if len(in.To) > 0 {
		writeHeader(&buf, "To", strings.Join(in.To, ", "))
	}
	writeHeader(&buf, "Subject", encodeSubject(in.Subject))
	writeHeader(&buf, "Date", date.Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")

	if in.Text == "" || in.HTML == "" {
		contentType, body := "text/plain", in.Text
		if in.HTML != "" {
			contentType, body = "text/html", in.HTML
		}
		writeHeader(&buf, "Content-Type", contentType+"; charset=\"utf-8\"")
		writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQuotedPrintable(&buf, body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", writer.Boundary()))
	buf.WriteString("\r\n")

	for _, part := range []struct{ contentType, body string }{
		{"text/plain", in.Text},
		{"text/html", in.HTML},
	} {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", part.contentType+"; charset=\"utf-8\"")
		header.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if err := writeQuotedPrintable(w, part.body); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeSubject(subject string) string {
	for i := 0; i < len(subject); i++ {
		if subject[i] >= 0x80 {
			return mime.QEncoding.Encode("UTF-8", subject)
		}
	}
	return subject
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
