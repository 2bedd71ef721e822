package logutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecent(t *testing.T) {
	assert := assert.New(t)
	Info("copied %d files", 3)
	Warn("slow %s", "server")
	Debug("not kept")

	ee := Recent()
	require.GreaterOrEqual(t, len(ee), 2)
	last := ee[len(ee)-2:]
	assert.Equal("copied 3 files", last[0].Message)
	assert.Equal(logrus.InfoLevel, last[0].Level)
	assert.Equal("slow server", last[1].Message)
	assert.Equal(logrus.WarnLevel, last[1].Level)
}

func TestSetLevel(t *testing.T) {
	before := logrus.GetLevel()
	defer logrus.SetLevel(before)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Error(t, SetLevel("loud"))
}

func TestCreateLogFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	fs := afero.NewMemMapFs()
	now := time.Date(2009, time.November, 10, 23, 1, 20, 0, time.UTC)

	f, name, err := createLogFile(fs, "logs", now)
	require.NoError(err)
	defer f.Close()
	assert.Equal(filepath.Join("logs", "groovyutil_20091110_230120.log"), name)
	ok, err := afero.DirExists(fs, "logs")
	require.NoError(err)
	assert.True(ok)
}
