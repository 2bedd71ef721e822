package emailutil

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/property"
	"github.com/sirupsen/logrus"
)

// SMTPPort is the submission port. STARTTLS is required.
const SMTPPort = "587"

// Sender delivers composed messages
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// smtpClient is the part of *smtp.Client used by SMTPSession
type smtpClient interface {
	SendMail(from string, to []string, r io.Reader) error
	Quit() error
	Close() error
}

// SMTPSession is an authenticated SMTP connection
type SMTPSession struct {
	c    smtpClient
	user string
}

// OpenSMTP connects on the submission port, starts TLS and logs in with PLAIN
func OpenSMTP(server, user, password string) (*SMTPSession, error) {
	addr := withPort(server, SMTPPort)
	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.Dial(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "smtp.dial: %s", addr)
	}
	err = c.StartTLS(&tls.Config{ServerName: host})
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "c.starttls")
	}
	err = c.Auth(sasl.NewPlainClient("", user, password))
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "c.auth")
	}
	logrus.Infof("emailutil: smtp: connected to %s as %s", addr, user)
	return &SMTPSession{c: c, user: user}, nil
}

// OpenSMTPFromProperties uses the smtp.* keys in store
func OpenSMTPFromProperties(store *property.Store) (*SMTPSession, error) {
	server := store.Get("smtp.server")
	if server == "" {
		return nil, errors.New("smtp.server: missing")
	}
	return OpenSMTP(server, store.Get("smtp.user"), store.Get("smtp.password"))
}

// Name of the sender
func (s *SMTPSession) Name() string { return "smtp" }

// Send delivers msg to every To, Cc and Bcc address.
// An empty From is sent as the logged in user.
func (s *SMTPSession) Send(ctx context.Context, msg *Message) error {
	if s == nil || s.c == nil {
		return ErrNotConnected
	}
	if msg == nil {
		return ErrNilMessage
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "ctx")
	}
	rcpts, err := msg.Recipients()
	if err != nil {
		return errors.Wrap(err, "recipients")
	}
	if len(rcpts) == 0 {
		return ErrNoRecipients
	}
	if msg.From == "" {
		msg.From = s.user
	}
	from, err := parseAddresses([]string{msg.From})
	if err != nil || len(from) == 0 {
		return errors.Errorf("smtp: bad from address: %q", msg.From)
	}
	raw, err := msg.Bytes()
	if err != nil {
		return errors.Wrap(err, "msg.bytes")
	}
	err = s.c.SendMail(from[0].Address, rcpts, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "c.sendmail")
	}
	logrus.Infof("emailutil: smtp: sent %q to %d recipients", msg.Subject, len(rcpts))
	return nil
}

// Close sends QUIT and closes the connection
func (s *SMTPSession) Close() error {
	if s == nil || s.c == nil {
		return ErrNotConnected
	}
	err := s.c.Quit()
	if err != nil {
		s.c.Close()
	}
	s.c = nil
	if err != nil {
		return errors.Wrap(err, "c.quit")
	}
	return nil
}
