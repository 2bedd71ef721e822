package ftputil

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"sort"
	"testing"

	"github.com/pkg/sftp"
	"github.com/scalesql/groovyutil/property"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// newTestSession wires a client to an in-memory sftp server
func newTestSession(t *testing.T) (*Session, afero.Fs) {
	t.Helper()
	require := require.New(t)

	serverRead, clientWrite := io.Pipe()
	clientRead, serverWrite := io.Pipe()
	server := sftp.NewRequestServer(struct {
		io.Reader
		io.WriteCloser
	}{serverRead, serverWrite}, sftp.InMemHandler())
	go server.Serve()

	client, err := sftp.NewClientPipe(clientRead, clientWrite)
	require.NoError(err)
	require.NoError(client.Mkdir("/data"))

	fs := afero.NewMemMapFs()
	require.NoError(afero.WriteFile(fs, "/local/a.csv", []byte("alpha"), 0644))
	require.NoError(afero.WriteFile(fs, "/local/b.csv", []byte("bravo"), 0644))
	require.NoError(afero.WriteFile(fs, "/local/c.txt", []byte("charlie"), 0644))
	require.NoError(fs.MkdirAll("/dl", 0755))

	s, err := newSession(client, server, fs, "/local", nil)
	require.NoError(err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fs
}

func TestSessionDirectories(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s, _ := newTestSession(t)

	require.NoError(s.Cd("/data"))
	pwd, err := s.Pwd()
	require.NoError(err)
	assert.Equal("/data", pwd)
	assert.Error(s.Cd("missing"))

	lpwd, err := s.Lpwd()
	require.NoError(err)
	assert.Equal("/local", lpwd)
	require.NoError(s.Lcd("/dl"))
	lpwd, _ = s.Lpwd()
	assert.Equal("/dl", lpwd)
	assert.Error(s.Lcd("/nope"))
	assert.Error(s.Lcd("/local/a.csv"))
}

func TestSessionTransfers(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	s, fs := newTestSession(t)
	require.NoError(s.Cd("/data"))

	list, err := s.Put("*.csv")
	require.NoError(err)
	sort.Strings(list)
	assert.Equal([]string{"/data/a.csv", "/data/b.csv"}, list)

	list, err = s.PutTo("c.txt", "renamed.txt")
	require.NoError(err)
	assert.Equal([]string{"/data/renamed.txt"}, list)
	assert.Error(s.Cd("renamed.txt"))

	names, err := s.Ls(".")
	require.NoError(err)
	sort.Strings(names)
	assert.Equal([]string{"a.csv", "b.csv", "renamed.txt"}, names)

	names, err = s.Ls("*.csv")
	require.NoError(err)
	sort.Strings(names)
	assert.Equal([]string{"a.csv", "b.csv"}, names)

	names, err = s.Ls("/data/a.csv")
	require.NoError(err)
	assert.Equal([]string{"a.csv"}, names)

	require.NoError(s.Lcd("/dl"))
	list, err = s.Get("a.csv")
	require.NoError(err)
	assert.Equal([]string{"/dl/a.csv"}, list)
	body, err := afero.ReadFile(fs, "/dl/a.csv")
	require.NoError(err)
	assert.Equal("alpha", string(body))

	list, err = s.GetTo("renamed.txt", "/dl/c.txt")
	require.NoError(err)
	assert.Equal([]string{"/dl/c.txt"}, list)
	body, err = afero.ReadFile(fs, "/dl/c.txt")
	require.NoError(err)
	assert.Equal("charlie", string(body))

	_, err = s.GetTo("*.csv", "/dl/c.txt")
	assert.Error(err)

	list, err = s.Rm("*.csv")
	require.NoError(err)
	assert.Len(list, 2)
	names, err = s.Ls(".")
	require.NoError(err)
	assert.Equal([]string{"renamed.txt"}, names)

	_, err = s.Rm("missing.csv")
	assert.Error(err)
	_, err = s.Put("/local/*.zip")
	assert.Error(err)
}

func TestSessionClosed(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestSession(t)
	assert.NoError(s.Close())

	_, err := s.Pwd()
	assert.ErrorIs(err, ErrNotConnected)
	_, err = s.Ls(".")
	assert.ErrorIs(err, ErrNotConnected)
	assert.ErrorIs(s.Close(), ErrNotConnected)

	var empty *Session
	assert.ErrorIs(empty.Cd("/"), ErrNotConnected)
}

func TestConfigFromProperties(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cfg, err := ConfigFromProperties(property.FromMap(map[string]string{
		"ftp.server":   "sftp.example.com",
		"ftp.user":     "batch",
		"ftp.password": "secret",
	}))
	require.NoError(err)
	assert.Equal("sftp.example.com:22", cfg.address())
	assert.Equal("batch", cfg.User)

	cfg, err = ConfigFromProperties(property.FromMap(map[string]string{
		"ftp.server":   "sftp.example.com",
		"ftp.port":     "2222",
		"ftp.identity": "/keys/id_ed25519",
	}))
	require.NoError(err)
	assert.Equal("sftp.example.com:2222", cfg.address())
	assert.Equal("/keys/id_ed25519", cfg.IdentityFile)

	_, err = ConfigFromProperties(property.FromMap(map[string]string{
		"ftp.server": "sftp.example.com",
		"ftp.port":   "twenty-two",
	}))
	assert.Error(err)

	_, err = ConfigFromProperties(property.FromMap(map[string]string{}))
	assert.Error(err)
}

func TestAuthMethods(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fs := afero.NewMemMapFs()

	cfg := Config{Server: "localhost", User: "batch", Password: "secret"}
	sc, err := cfg.clientConfig(fs)
	require.NoError(err)
	assert.Len(sc.Auth, 1)
	assert.Equal("batch", sc.User)

	cfg.AddIdentity("/keys/id_ed25519")
	_, err = cfg.clientConfig(fs)
	assert.Error(err)

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(err)
	block, err := ssh.MarshalPrivateKey(key, "")
	require.NoError(err)
	require.NoError(afero.WriteFile(fs, "/keys/id_ed25519", pem.EncodeToMemory(block), 0600))
	methods, err := cfg.authMethods(fs)
	require.NoError(err)
	assert.Len(methods, 1)

	require.NoError(afero.WriteFile(fs, "/keys/id_ed25519", []byte("not a key"), 0600))
	_, err = cfg.authMethods(fs)
	assert.Error(err)
}

func TestOpenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, Config{Server: "127.0.0.1", Port: 1, User: "batch"})
	assert.Error(t, err)
}
