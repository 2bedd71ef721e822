package emailutil

import (
	"net"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/property"
	"github.com/sirupsen/logrus"
)

// IMAPPort is the IMAP over TLS port
const IMAPPort = "993"

// imapClient is the part of *client.Client used by IMAPSession
type imapClient interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	List(ref, name string, ch chan *imap.MailboxInfo) error
	Create(name string) error
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidCopy(seqset *imap.SeqSet, dest string) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Expunge(ch chan uint32) error
	Close() error
	Logout() error
}

// IMAPSession is a logged in IMAP connection with at most one open folder.
// It is not safe for concurrent use.
type IMAPSession struct {
	c      imapClient
	user   string
	folder *imap.MailboxStatus
}

// withPort adds port to server if it doesn't have one
func withPort(server, port string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, port)
}

// OpenIMAP connects over TLS and logs in
func OpenIMAP(server, user, password string) (*IMAPSession, error) {
	addr := withPort(server, IMAPPort)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "client.dialtls: %s", addr)
	}
	s, err := newIMAPSession(c, user, password)
	if err != nil {
		_ = c.Logout()
		return nil, err
	}
	logrus.Infof("emailutil: imap: connected to %s as %s", addr, user)
	return s, nil
}

// OpenIMAPFromProperties uses the imap.* keys in store
func OpenIMAPFromProperties(store *property.Store) (*IMAPSession, error) {
	server := store.Get("imap.server")
	if server == "" {
		return nil, errors.New("imap.server: missing")
	}
	return OpenIMAP(server, store.Get("imap.user"), store.Get("imap.password"))
}

func newIMAPSession(c imapClient, user, password string) (*IMAPSession, error) {
	err := c.Login(user, password)
	if err != nil {
		return nil, errors.Wrap(err, "c.login")
	}
	return &IMAPSession{c: c, user: user}, nil
}

func (s *IMAPSession) connected() error {
	if s == nil || s.c == nil {
		return ErrNotConnected
	}
	return nil
}

func (s *IMAPSession) open() error {
	if err := s.connected(); err != nil {
		return err
	}
	if s.folder == nil {
		return ErrNoFolder
	}
	return nil
}

// OpenFolder selects a folder read-write. An open folder is closed first.
func (s *IMAPSession) OpenFolder(name string) error {
	if err := s.connected(); err != nil {
		return err
	}
	if s.folder != nil {
		if err := s.CloseFolder(); err != nil {
			return err
		}
	}
	status, err := s.c.Select(name, false)
	if err != nil {
		return errors.Wrapf(err, "c.select: %s", name)
	}
	s.folder = status
	logrus.Debugf("emailutil: imap: folder %s open: %d messages", name, status.Messages)
	return nil
}

// CloseFolder closes the open folder. Messages flagged deleted are expunged.
func (s *IMAPSession) CloseFolder() error {
	if err := s.open(); err != nil {
		return err
	}
	name := s.folder.Name
	s.folder = nil
	err := s.c.Close()
	if err != nil {
		return errors.Wrapf(err, "c.close: %s", name)
	}
	logrus.Debugf("emailutil: imap: folder %s closed", name)
	return nil
}

// Close closes any open folder and logs out
func (s *IMAPSession) Close() error {
	if err := s.connected(); err != nil {
		return err
	}
	var err error
	if s.folder != nil {
		err = s.CloseFolder()
	}
	lerr := s.c.Logout()
	s.c = nil
	if err != nil {
		return err
	}
	if lerr != nil {
		return errors.Wrap(lerr, "c.logout")
	}
	logrus.Infof("emailutil: imap: %s logged out", s.user)
	return nil
}

// exists reports whether the server has a folder called name
func (s *IMAPSession) exists(name string) (bool, error) {
	ch := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.c.List("", name, ch)
	}()
	found := false
	for mb := range ch {
		if mb.Name == name {
			found = true
		}
	}
	if err := <-done; err != nil {
		return false, errors.Wrap(err, "c.list")
	}
	return found, nil
}

// CopyToFolder copies msg from the open folder to folder.
// The folder is created if it doesn't exist.
func (s *IMAPSession) CopyToFolder(msg *Message, folder string) error {
	if err := s.open(); err != nil {
		return err
	}
	if msg == nil {
		return ErrNilMessage
	}
	ok, err := s.exists(folder)
	if err != nil {
		return err
	}
	if !ok {
		err = s.c.Create(folder)
		if err != nil {
			return errors.Wrapf(err, "c.create: %s", folder)
		}
		logrus.Infof("emailutil: imap: folder %s created", folder)
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(msg.UID)
	err = s.c.UidCopy(seqset, folder)
	if err != nil {
		return errors.Wrapf(err, "c.uidcopy: %s", folder)
	}
	logrus.Infof("emailutil: imap: message %d copied to %s", msg.UID, folder)
	return nil
}

// FirstMessage returns the first message of the open folder or nil if
// the folder is empty
func (s *IMAPSession) FirstMessage() (*Message, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	status, err := s.c.Select(s.folder.Name, false)
	if err != nil {
		return nil, errors.Wrapf(err, "c.select: %s", s.folder.Name)
	}
	s.folder = status
	if status.Messages == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(1)
	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchFlags, section.FetchItem()}
	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.c.Fetch(seqset, items, ch)
	}()
	// unsolicited FETCH updates can arrive on ch too
	var im *imap.Message
	for m := range ch {
		if im == nil && m.SeqNum == 1 && m.GetBody(section) != nil {
			im = m
		}
	}
	if err = <-done; err != nil {
		return nil, errors.Wrap(err, "c.fetch")
	}
	if im == nil {
		return nil, errors.New("fetch: no body for message 1")
	}
	msg, err := ParseMessage(im.GetBody(section))
	if err != nil {
		return nil, errors.Wrapf(err, "parsemessage: %d", im.Uid)
	}
	msg.UID = im.Uid
	msg.Flags = im.Flags
	return msg, nil
}

// Delete flags msg deleted and expunges the open folder
func (s *IMAPSession) Delete(msg *Message) error {
	if err := s.open(); err != nil {
		return err
	}
	if msg == nil {
		return ErrNilMessage
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(msg.UID)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	err := s.c.UidStore(seqset, item, []interface{}{imap.DeletedFlag}, nil)
	if err != nil {
		return errors.Wrapf(err, "c.uidstore: %d", msg.UID)
	}
	err = s.c.Expunge(nil)
	if err != nil {
		return errors.Wrap(err, "c.expunge")
	}
	logrus.Infof("emailutil: imap: message %d deleted", msg.UID)
	return nil
}
