package quarantine

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "/quarantine", zap.NewNop())
	require.NoError(t, err)
	return store, fs
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestMoveIn_RelocatesFile(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/target/evil.exe", "payload")

	dest, err := store.MoveIn("/target/evil.exe")
	require.NoError(t, err)
	assert.Equal(t, "/quarantine/evil.exe", dest)

	gone, err := afero.Exists(fs, "/target/evil.exe")
	require.NoError(t, err)
	assert.False(t, gone, "source should no longer exist")

	content, err := afero.ReadFile(fs, dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}

func TestMoveIn_MissingSource(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.MoveIn("/target/nope.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveIn_CollisionGetsNumericSuffix(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/a/x.exe", "first")
	writeFile(t, fs, "/b/x.exe", "second")
	writeFile(t, fs, "/c/x.exe", "third")

	first, err := store.MoveIn("/a/x.exe")
	require.NoError(t, err)
	second, err := store.MoveIn("/b/x.exe")
	require.NoError(t, err)
	third, err := store.MoveIn("/c/x.exe")
	require.NoError(t, err)

	assert.Equal(t, "/quarantine/x.exe", first)
	assert.Equal(t, "/quarantine/x_1.exe", second)
	assert.Equal(t, "/quarantine/x_2.exe", third)

	// Neither entry overwrote the other.
	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"x.exe", "x_1.exe", "x_2.exe"}, names)

	content, err := afero.ReadFile(fs, first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}

func TestRestore_MovesEntryOut(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/quarantine/doc.pdf", "content")
	require.NoError(t, fs.MkdirAll("/restored", 0o755))

	path, err := store.Restore("doc.pdf", "/restored")
	require.NoError(t, err)
	assert.Equal(t, "/restored/doc.pdf", path)

	// Entry ceases to exist in quarantine: a delete now reports absent.
	deleted, err := store.Delete("doc.pdf")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRestore_UnknownFilename(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Restore("ghost.bin", "/restored")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestore_RefusesToOverwrite(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/quarantine/doc.pdf", "quarantined")
	writeFile(t, fs, "/restored/doc.pdf", "live")

	_, err := store.Restore("doc.pdf", "/restored")
	assert.ErrorIs(t, err, ErrDestinationExists)

	// The live file is untouched.
	content, err := afero.ReadFile(fs, "/restored/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "live", string(content))
}

func TestDelete(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/quarantine/junk.bin", "junk")

	deleted, err := store.Delete("junk.bin")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Idempotent: deleting again reports absence, not an error.
	deleted, err = store.Delete("junk.bin")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestList_OnlyRegularFilesSorted(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/quarantine/b.exe", "b")
	writeFile(t, fs, "/quarantine/a.exe", "a")
	require.NoError(t, fs.MkdirAll("/quarantine/subdir", 0o755))
	writeFile(t, fs, "/quarantine/subdir/nested.exe", "nested")

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.exe", "b.exe"}, names)
}

type stubScanner struct {
	verdict *core.ScanVerdict
}

func (s *stubScanner) Scan(ctx context.Context, path string) (*core.ScanVerdict, error) {
	v := *s.verdict
	v.Path = path
	v.ScannedAt = time.Now()
	return &v, nil
}

func TestRescan_InPlace(t *testing.T) {
	store, fs := newTestStore(t)
	writeFile(t, fs, "/quarantine/evil.exe", "payload")

	scanner := &stubScanner{verdict: &core.ScanVerdict{
		Status: core.StatusClean,
		Detail: "OK (clamd)",
		Engine: "clamd",
	}}

	verdict, err := store.Rescan(context.Background(), "evil.exe", scanner)
	require.NoError(t, err)
	assert.Equal(t, core.StatusClean, verdict.Status)
	assert.Equal(t, "/quarantine/evil.exe", verdict.Path)

	// Residency unchanged.
	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"evil.exe"}, names)
}

func TestRescan_UnknownFilename(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Rescan(context.Background(), "ghost.exe", &stubScanner{verdict: &core.ScanVerdict{}})
	assert.ErrorIs(t, err, ErrNotFound)
}
