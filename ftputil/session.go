package ftputil

import (
	"context"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"github.com/scalesql/groovyutil/property"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

// ErrNotConnected is returned by a closed or empty Session
var ErrNotConnected = errors.New("sftp: not connected")

// Session is an open SFTP channel with remote and local working directories.
// It is not safe for concurrent use.
type Session struct {
	client *sftp.Client
	conn   io.Closer
	fs     afero.Fs
	rwd    string
	lwd    string
	log    *logrus.Entry
}

// newLogger writes severity prefixed lines to standard error
func newLogger() *logrus.Entry {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	l.Level = logrus.GetLevel()
	return l.WithField("component", "sftp")
}

// Open connects to the server and starts the sftp subsystem
func Open(ctx context.Context, cfg Config) (*Session, error) {
	fs := afero.NewOsFs()
	sshConfig, err := cfg.clientConfig(fs)
	if err != nil {
		return nil, errors.Wrap(err, "clientconfig")
	}
	log := newLogger()
	addr := cfg.address()

	var d net.Dialer
	d.Timeout = sshConfig.Timeout
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "dialcontext")
	}
	c, chans, reqs, err := ssh.NewClientConn(nc, addr, sshConfig)
	if err != nil {
		nc.Close()
		return nil, errors.Wrapf(err, "ssh.newclientconn: %s", addr)
	}
	sshClient := ssh.NewClient(c, chans, reqs)
	log.Infof("connected to %s as %s", addr, cfg.User)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, errors.Wrap(err, "sftp.newclient")
	}
	lwd, err := os.Getwd()
	if err != nil {
		client.Close()
		sshClient.Close()
		return nil, errors.Wrap(err, "os.getwd")
	}
	s, err := newSession(client, sshClient, fs, lwd, log)
	if err != nil {
		client.Close()
		sshClient.Close()
		return nil, err
	}
	return s, nil
}

// OpenFromProperties opens a session with the ftp.* keys in store
func OpenFromProperties(ctx context.Context, store *property.Store) (*Session, error) {
	cfg, err := ConfigFromProperties(store)
	if err != nil {
		return nil, errors.Wrap(err, "configfromproperties")
	}
	return Open(ctx, cfg)
}

func newSession(client *sftp.Client, conn io.Closer, fs afero.Fs, lwd string, log *logrus.Entry) (*Session, error) {
	rwd, err := client.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "client.getwd")
	}
	if log == nil {
		log = newLogger()
	}
	return &Session{
		client: client,
		conn:   conn,
		fs:     fs,
		rwd:    rwd,
		lwd:    lwd,
		log:    log,
	}, nil
}

func (s *Session) connected() error {
	if s == nil || s.client == nil {
		return ErrNotConnected
	}
	return nil
}

// Close ends the sftp channel and then the SSH connection
func (s *Session) Close() error {
	if err := s.connected(); err != nil {
		return err
	}
	err := s.client.Close()
	s.client = nil
	if s.conn != nil {
		cerr := s.conn.Close()
		if err == nil {
			err = cerr
		}
		s.conn = nil
	}
	s.log.Info("disconnected")
	if err != nil {
		return errors.Wrap(err, "close")
	}
	return nil
}

// Pwd is the remote working directory
func (s *Session) Pwd() (string, error) {
	if err := s.connected(); err != nil {
		return "", err
	}
	return s.rwd, nil
}

// Cd changes the remote working directory
func (s *Session) Cd(dir string) error {
	if err := s.connected(); err != nil {
		return err
	}
	target := s.remote(dir)
	fi, err := s.client.Stat(target)
	if err != nil {
		return errors.Wrapf(err, "client.stat: %s", target)
	}
	if !fi.IsDir() {
		return errors.Errorf("cd: %s: not a directory", target)
	}
	s.rwd = target
	s.log.Debugf("cd %s", target)
	return nil
}

// Lpwd is the local working directory
func (s *Session) Lpwd() (string, error) {
	if err := s.connected(); err != nil {
		return "", err
	}
	return s.lwd, nil
}

// Lcd changes the local working directory
func (s *Session) Lcd(dir string) error {
	if err := s.connected(); err != nil {
		return err
	}
	target := s.local(dir)
	ok, err := afero.IsDir(s.fs, target)
	if err != nil || !ok {
		return errors.Errorf("lcd: %s: not a directory", target)
	}
	s.lwd = target
	s.log.Debugf("lcd %s", target)
	return nil
}

// remote resolves p against the remote working directory
func (s *Session) remote(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(s.rwd, p)
}

// local resolves p against the local working directory
func (s *Session) local(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.lwd, p)
}
