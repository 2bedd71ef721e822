package emailutil

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() *Message {
	m := NewMessage()
	m.From = "Batch Jobs <batch@example.com>"
	m.To = []string{"ops@example.com", "Ann Smith <ann@example.com>"}
	m.Cc = []string{"cc@example.com"}
	m.Bcc = []string{"audit@example.com"}
	m.Subject = "Nightly load"
	m.Date = time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)
	m.Text = "Loaded 42 rows"
	return m
}

func TestRecipients(t *testing.T) {
	assert := assert.New(t)
	m := testMessage()
	rcpts, err := m.Recipients()
	assert.NoError(err)
	assert.Equal([]string{"ops@example.com", "ann@example.com", "cc@example.com", "audit@example.com"}, rcpts)

	m.To = append(m.To, "not an address <")
	_, err = m.Recipients()
	assert.Error(err)

	rcpts, err = NewMessage().Recipients()
	assert.NoError(err)
	assert.Empty(rcpts)
}

func TestMessageRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := testMessage()
	raw, err := m.Bytes()
	require.NoError(err)
	assert.NotContains(string(raw), "audit@example.com")
	assert.Contains(strings.ToLower(string(raw)), "message-id:")

	got, err := ParseMessage(bytes.NewReader(raw))
	require.NoError(err)
	assert.Equal("Nightly load", got.Subject)
	assert.Equal(`"Batch Jobs" <batch@example.com>`, got.From)
	assert.Equal([]string{"ops@example.com", `"Ann Smith" <ann@example.com>`}, got.To)
	assert.Equal([]string{"cc@example.com"}, got.Cc)
	assert.True(m.Date.Equal(got.Date))
	assert.Equal("Loaded 42 rows", got.Text)
	assert.Empty(got.HTML)
	assert.Empty(got.Attachments)
}

func TestMessageAttachments(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := testMessage()
	m.HTML = "<p>Loaded <b>42</b> rows</p>"
	m.AddAttachment("rows.csv", "text/csv", []byte("id,name\n1,a\n"))
	m.AddAttachment("blob.bin", "", []byte{0, 1, 2, 3})
	assert.Equal("application/octet-stream", m.Attachments[1].ContentType)

	raw, err := m.Bytes()
	require.NoError(err)
	assert.Contains(string(raw), "multipart/mixed")

	got, err := ParseMessage(bytes.NewReader(raw))
	require.NoError(err)
	assert.Equal("Loaded 42 rows", got.Text)
	assert.Equal("<p>Loaded <b>42</b> rows</p>", got.HTML)
	require.Len(got.Attachments, 2)
	assert.Equal("rows.csv", got.Attachments[0].Filename)
	assert.Equal("text/csv", got.Attachments[0].ContentType)
	assert.Equal("id,name\n1,a\n", string(got.Attachments[0].Data))
	assert.Equal([]byte{0, 1, 2, 3}, got.Attachments[1].Data)
}

func TestHTMLOnly(t *testing.T) {
	assert := assert.New(t)
	m := testMessage()
	m.Text = ""
	m.HTML = "<h1>done</h1>"
	raw, err := m.Bytes()
	assert.NoError(err)
	assert.Contains(string(raw), "text/html")
	got, err := ParseMessage(bytes.NewReader(raw))
	assert.NoError(err)
	assert.Equal("<h1>done</h1>", got.HTML)
}
