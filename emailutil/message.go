// Package emailutil reads mail folders over IMAP and sends mail through
// SMTP or AWS SES.
package emailutil

import (
	"bytes"
	"io"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
)

var (
	// ErrNotConnected is returned by a closed or empty session
	ErrNotConnected = errors.New("email: not connected")
	// ErrNoFolder is returned when no IMAP folder is open
	ErrNoFolder = errors.New("imap: no folder open")
	// ErrNilMessage is returned when a nil message is passed
	ErrNilMessage = errors.New("email: nil message")
	// ErrNoRecipients is returned when a message has no To, Cc or Bcc
	ErrNoRecipients = errors.New("email: no recipients")
)

// Attachment is a file carried by a Message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a mail message. Addresses are "Name <user@host>" or "user@host".
// UID is set on messages read from an IMAP folder.
type Message struct {
	UID         uint32
	Flags       []string
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Date        time.Time
	Text        string
	HTML        string
	Attachments []Attachment
}

// NewMessage returns an empty message
func NewMessage() *Message {
	return &Message{
		To:          []string{},
		Cc:          []string{},
		Bcc:         []string{},
		Attachments: []Attachment{},
	}
}

// AddAttachment adds a file to the message
func (m *Message) AddAttachment(filename, contentType string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.Attachments = append(m.Attachments, Attachment{Filename: filename, ContentType: contentType, Data: data})
}

// Recipients is To, Cc and Bcc as bare addresses
func (m *Message) Recipients() ([]string, error) {
	all := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	for _, list := range [][]string{m.To, m.Cc, m.Bcc} {
		addrs, err := parseAddresses(list)
		if err != nil {
			return all, err
		}
		for _, a := range addrs {
			all = append(all, a.Address)
		}
	}
	return all, nil
}

func parseAddresses(list []string) ([]*mail.Address, error) {
	addrs := make([]*mail.Address, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parsed, err := mail.ParseAddressList(s)
		if err != nil {
			return addrs, errors.Wrapf(err, "mail.parseaddresslist: %s", s)
		}
		addrs = append(addrs, parsed...)
	}
	return addrs, nil
}

// Bytes renders the message as MIME. Bcc isn't written.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := m.writeTo(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Message) writeTo(w io.Writer) error {
	var h mail.Header
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(m.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return errors.Wrap(err, "h.generatemessageid")
	}
	for _, field := range []struct {
		key  string
		list []string
	}{
		{"From", []string{m.From}},
		{"To", m.To},
		{"Cc", m.Cc},
	} {
		addrs, err := parseAddresses(field.list)
		if err != nil {
			return err
		}
		if len(addrs) > 0 {
			h.SetAddressList(field.key, addrs)
		}
	}

	if len(m.Attachments) == 0 && (m.Text == "" || m.HTML == "") {
		contentType, body := "text/plain", m.Text
		if m.HTML != "" {
			contentType, body = "text/html", m.HTML
		}
		h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
		sw, err := mail.CreateSingleInlineWriter(w, h)
		if err != nil {
			return errors.Wrap(err, "mail.createsingleinlinewriter")
		}
		if _, err = io.WriteString(sw, body); err != nil {
			sw.Close()
			return errors.Wrap(err, "io.writestring")
		}
		return errors.Wrap(sw.Close(), "sw.close")
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return errors.Wrap(err, "mail.createwriter")
	}
	iw, err := mw.CreateInline()
	if err != nil {
		return errors.Wrap(err, "mw.createinline")
	}
	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain", m.Text},
		{"text/html", m.HTML},
	} {
		if part.body == "" {
			continue
		}
		var ih mail.InlineHeader
		ih.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		pw, err := iw.CreatePart(ih)
		if err != nil {
			return errors.Wrap(err, "iw.createpart")
		}
		if _, err = io.WriteString(pw, part.body); err != nil {
			pw.Close()
			return errors.Wrap(err, "io.writestring")
		}
		if err = pw.Close(); err != nil {
			return errors.Wrap(err, "pw.close")
		}
	}
	if err = iw.Close(); err != nil {
		return errors.Wrap(err, "iw.close")
	}

	for _, a := range m.Attachments {
		var ah mail.AttachmentHeader
		ah.SetContentType(a.ContentType, nil)
		ah.SetFilename(a.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return errors.Wrap(err, "mw.createattachment")
		}
		if _, err = aw.Write(a.Data); err != nil {
			aw.Close()
			return errors.Wrap(err, "aw.write")
		}
		if err = aw.Close(); err != nil {
			return errors.Wrap(err, "aw.close")
		}
	}
	return errors.Wrap(mw.Close(), "mw.close")
}

// ParseMessage reads a MIME message
func ParseMessage(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "mail.createreader")
	}
	defer mr.Close()

	m := NewMessage()
	h := mr.Header
	m.Subject, _ = h.Subject()
	m.Date, _ = h.Date()
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		m.From = formatAddress(from[0])
	}
	m.To = addressStrings(h, "To")
	m.Cc = addressStrings(h, "Cc")

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return m, errors.Wrap(err, "mr.nextpart")
		}
		body, err := io.ReadAll(p.Body)
		if err != nil {
			return m, errors.Wrap(err, "io.readall")
		}
		switch ph := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := ph.ContentType()
			if ct == "text/html" {
				m.HTML += string(body)
			} else {
				m.Text += string(body)
			}
		case *mail.AttachmentHeader:
			name, _ := ph.Filename()
			ct, _, _ := ph.ContentType()
			m.AddAttachment(name, ct, body)
		}
	}
	return m, nil
}

func addressStrings(h mail.Header, key string) []string {
	list, err := h.AddressList(key)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, formatAddress(a))
	}
	return out
}

func formatAddress(a *mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return a.String()
}
