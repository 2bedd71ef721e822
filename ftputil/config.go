// Package ftputil moves files to and from SFTP servers.
// A Session keeps a remote and a local working directory so scripts can
// cd around both sides the way an interactive sftp client does.
package ftputil

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/property"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

// DefaultPort is the SSH port
const DefaultPort = 22

// DefaultCompression is the compression preference batch scripts ask for.
// x/crypto/ssh doesn't offer zlib so it is only logged.
const DefaultCompression = "zlib@openssh.com,zlib,none"

// Config describes one SFTP server
type Config struct {
	Server       string
	Port         int
	User         string
	Password     string
	IdentityFile string
	// Compression and CompressionLevel are kept for the logs only
	Compression      string
	CompressionLevel int
	Timeout          time.Duration
}

// ConfigFromProperties reads the ftp.* keys
func ConfigFromProperties(store *property.Store) (Config, error) {
	cfg := Config{
		Server:       store.Get("ftp.server"),
		User:         store.Get("ftp.user"),
		Password:     store.Get("ftp.password"),
		IdentityFile: store.Get("ftp.identity"),
	}
	if p := store.Get("ftp.port"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return cfg, errors.Wrapf(err, "ftp.port: %s", p)
		}
		cfg.Port = port
	}
	if cfg.Server == "" {
		return cfg, errors.New("ftp.server: missing")
	}
	return cfg, nil
}

// AddIdentity sets the private key file used to log in.
// A key takes precedence over the password.
func (cfg *Config) AddIdentity(file string) {
	cfg.IdentityFile = file
}

func (cfg Config) port() int {
	if cfg.Port == 0 {
		return DefaultPort
	}
	return cfg.Port
}

func (cfg Config) address() string {
	return cfg.Server + ":" + strconv.Itoa(cfg.port())
}

// clientConfig builds the SSH settings. Host keys aren't checked.
func (cfg Config) clientConfig(fs afero.Fs) (*ssh.ClientConfig, error) {
	auth, err := cfg.authMethods(fs)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	compression := cfg.Compression
	if compression == "" {
		compression = DefaultCompression
	}
	logrus.Debugf("ftputil: %s: compression requested: %s level %d (not negotiated)", cfg.address(), compression, cfg.CompressionLevel)
	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}, nil
}

func (cfg Config) authMethods(fs afero.Fs) ([]ssh.AuthMethod, error) {
	if cfg.IdentityFile != "" {
		pem, err := afero.ReadFile(fs, cfg.IdentityFile)
		if err != nil {
			return nil, errors.Wrap(err, "afero.readfile")
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "ssh.parseprivatekey: %s", cfg.IdentityFile)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
}
