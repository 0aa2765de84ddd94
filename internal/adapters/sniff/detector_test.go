package sniff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pngHeader is the 8-byte PNG signature plus a minimal chunk start,
// enough for magic-byte detection
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestDetectMIME_PNG(t *testing.T) {
	d := NewDetector(zap.NewNop())
	path := writeTemp(t, "pic.png", pngHeader)

	mime, err := d.DetectMIME(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestDetectMIME_Text(t *testing.T) {
	d := NewDetector(zap.NewNop())
	path := writeTemp(t, "note.txt", []byte("plain text content\n"))

	mime, err := d.DetectMIME(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mime, "text/plain"), "got %s", mime)
	assert.NotContains(t, mime, ";", "parameters should be stripped")
}

func TestVerifyMIME_Match(t *testing.T) {
	d := NewDetector(zap.NewNop())
	path := writeTemp(t, "pic.png", pngHeader)

	check := d.VerifyMIME(path, "image/")
	require.NotNil(t, check.Match)
	assert.True(t, *check.Match)
	assert.Equal(t, "image/png", check.MIME)
}

func TestVerifyMIME_Mismatch(t *testing.T) {
	d := NewDetector(zap.NewNop())
	// Extension promises an image, content is plain text.
	path := writeTemp(t, "fake.jpg", []byte("just some text pretending"))

	check := d.VerifyMIME(path, "image/")
	require.NotNil(t, check.Match)
	assert.False(t, *check.Match)
}

func TestVerifyMIME_InconclusiveOnMissingFile(t *testing.T) {
	d := NewDetector(zap.NewNop())

	check := d.VerifyMIME(filepath.Join(t.TempDir(), "ghost.bin"), "image/")
	// Detection failure is inconclusive, never a mismatch.
	assert.Nil(t, check.Match)
	assert.Contains(t, check.Detail, "detection-failed")
}

func TestVerifyMIME_NoExpectation(t *testing.T) {
	d := NewDetector(zap.NewNop())
	path := writeTemp(t, "pic.png", pngHeader)

	check := d.VerifyMIME(path, "")
	assert.Nil(t, check.Match)
	assert.Equal(t, "OK", check.Detail)
}
