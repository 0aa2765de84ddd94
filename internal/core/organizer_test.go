package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/adapters/cache"
	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/quarantine"
)

// scanFunc adapts a function to the FileScanner interface
type scanFunc func(ctx context.Context, path string) (*core.ScanVerdict, error)

func (f scanFunc) Scan(ctx context.Context, path string) (*core.ScanVerdict, error) {
	return f(ctx, path)
}

func cleanScanner() scanFunc {
	return func(ctx context.Context, path string) (*core.ScanVerdict, error) {
		return &core.ScanVerdict{
			Path:      path,
			Status:    core.StatusClean,
			Detail:    "OK (clamd)",
			Engine:    "clamd",
			ScannedAt: time.Now(),
		}, nil
	}
}

func infectedScanner(signature string) scanFunc {
	return func(ctx context.Context, path string) (*core.ScanVerdict, error) {
		return &core.ScanVerdict{
			Path:      path,
			Status:    core.StatusInfected,
			Signature: signature,
			Detail:    fmt.Sprintf("%s (FOUND)", signature),
			Engine:    "clamd",
			ScannedAt: time.Now(),
		}, nil
	}
}

type progressEvent struct {
	percent int
	message string
}

type progressRecorder struct {
	events []progressEvent
}

func (r *progressRecorder) record(percent int, message string) {
	r.events = append(r.events, progressEvent{percent, message})
}

func newRun(t *testing.T, scanner core.FileScanner, opts core.OrganizerOptions) (*core.OrganizerService, afero.Fs, *quarantine.Store) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := quarantine.NewStore(fs, "/quarantine", zap.NewNop())
	require.NoError(t, err)
	svc := core.NewOrganizerService(fs, scanner, nil, store, zap.NewNop(), opts)
	return svc, fs, store
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestOrganize_SecurityDisabled(t *testing.T) {
	svc, fs, _ := newRun(t, nil, core.OrganizerOptions{})
	require.NoError(t, afero.WriteFile(fs, "/target/a.jpg", []byte("jpegdata"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/target/b.txt", []byte("text"), 0o644))

	result, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err)

	assert.True(t, exists(t, fs, "/target/Images/a.jpg"))
	assert.True(t, exists(t, fs, "/target/Documents/b.txt"))
	assert.False(t, exists(t, fs, "/target/a.jpg"))
	assert.False(t, exists(t, fs, "/target/b.txt"))

	a := result.Analytics
	assert.Equal(t, 2, a.TotalFiles)
	assert.Equal(t, int64(len("jpegdata")+len("text")), a.TotalSizeBytes)
	assert.Equal(t, map[string]int{"Images": 1, "Documents": 1}, a.Categories)
	assert.Equal(t, core.SecurityStats{}, a.Security)
	assert.Len(t, result.Logs, 2)
	assert.NotEmpty(t, a.RunID)
}

func TestOrganize_InfectedFileIsQuarantinedOnly(t *testing.T) {
	svc, fs, store := newRun(t, infectedScanner("Eicar-Test-Signature"),
		core.OrganizerOptions{SecurityEnabled: true})
	require.NoError(t, afero.WriteFile(fs, "/target/evil.exe", []byte("payload"), 0o644))

	result, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err)

	// The file exists in exactly one place: quarantine, original name.
	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"evil.exe"}, names)
	assert.False(t, exists(t, fs, "/target/evil.exe"))
	assert.False(t, exists(t, fs, "/target/Others"))

	a := result.Analytics
	assert.Equal(t, core.SecurityStats{Scanned: 1, Infected: 1, Quarantined: 1, Clean: 0}, a.Security)
	assert.Empty(t, a.Categories)
	assert.Zero(t, a.TotalSizeBytes, "quarantined bytes are excluded")

	require.Len(t, result.Verdicts, 1)
	assert.Equal(t, "/quarantine/evil.exe", result.Verdicts[0].QuarantinedTo)
}

func TestOrganize_MixedRunCountersBalance(t *testing.T) {
	infected := map[string]bool{"/target/bad.exe": true}
	scanner := scanFunc(func(ctx context.Context, path string) (*core.ScanVerdict, error) {
		if infected[path] {
			return infectedScanner("Sig")(ctx, path)
		}
		if path == "/target/odd.bin" {
			return &core.ScanVerdict{
				Path:   path,
				Status: core.StatusUnknown,
				Detail: "clamscan-not-installed",
				Engine: "clamscan",
			}, nil
		}
		return cleanScanner()(ctx, path)
	})

	svc, fs, _ := newRun(t, scanner, core.OrganizerOptions{SecurityEnabled: true})
	for _, name := range []string{"bad.exe", "good.txt", "odd.bin"} {
		require.NoError(t, afero.WriteFile(fs, "/target/"+name, []byte("x"), 0o644))
	}

	result, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err)

	sec := result.Analytics.Security
	assert.Equal(t, sec.Scanned, sec.Infected+sec.Clean)
	assert.Equal(t, 3, sec.Scanned)
	assert.Equal(t, 1, sec.Infected)
	// Unknown-status verdicts count toward Clean in the balance but keep
	// their status on the verdict.
	assert.Equal(t, 2, sec.Clean)
	assert.True(t, exists(t, fs, "/target/Others/odd.bin"))
}

func TestOrganize_EmptyFolder(t *testing.T) {
	svc, fs, _ := newRun(t, nil, core.OrganizerOptions{SecurityEnabled: true})
	require.NoError(t, fs.MkdirAll("/target", 0o755))

	rec := &progressRecorder{}
	result, err := svc.Organize(context.Background(), "/target", rec.record)
	require.NoError(t, err)

	a := result.Analytics
	assert.Zero(t, a.TotalFiles)
	assert.Zero(t, a.TotalSizeBytes)
	assert.Empty(t, a.Categories)
	assert.Equal(t, core.SecurityStats{}, a.Security)
	assert.Empty(t, result.Logs)

	require.Len(t, rec.events, 1)
	assert.Equal(t, progressEvent{100, "No files to organize"}, rec.events[0])
}

func TestOrganize_ProgressIsMonotonic(t *testing.T) {
	svc, fs, _ := newRun(t, cleanScanner(), core.OrganizerOptions{SecurityEnabled: true})
	for i := 0; i < 7; i++ {
		name := fmt.Sprintf("/target/f%d.txt", i)
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0o644))
	}

	rec := &progressRecorder{}
	_, err := svc.Organize(context.Background(), "/target", rec.record)
	require.NoError(t, err)

	last := 0
	for _, ev := range rec.events {
		assert.GreaterOrEqual(t, ev.percent, last)
		last = ev.percent
	}
	assert.Equal(t, 100, last)
}

func TestOrganize_ThreatEventAfterFinalProgress(t *testing.T) {
	svc, fs, _ := newRun(t, infectedScanner("Sig"), core.OrganizerOptions{SecurityEnabled: true})
	require.NoError(t, afero.WriteFile(fs, "/target/evil.exe", []byte("x"), 0o644))

	rec := &progressRecorder{}
	_, err := svc.Organize(context.Background(), "/target", rec.record)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(rec.events), 2)
	final := rec.events[len(rec.events)-1]
	assert.Equal(t, 100, final.percent)
	assert.Contains(t, final.message, "quarantine")
}

func TestOrganize_MoveFailureIsIsolated(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/target/a.txt", []byte("aaa"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/target/b.txt", []byte("bb"), 0o644))

	// Category folders cannot be created on a read-only view, so every
	// relocation fails while enumeration still works.
	roFs := afero.NewReadOnlyFs(fs)
	svc := core.NewOrganizerService(roFs, nil, nil, nil, zap.NewNop(), core.OrganizerOptions{})

	result, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err, "per-candidate errors must not abort the run")

	a := result.Analytics
	assert.Equal(t, 2, a.TotalFiles)
	assert.Zero(t, a.TotalSizeBytes)
	assert.Empty(t, a.Categories)

	require.Len(t, result.Logs, 2)
	assert.Contains(t, result.Logs[0], "Error moving")

	// Candidates are left untouched.
	assert.True(t, exists(t, fs, "/target/a.txt"))
	assert.True(t, exists(t, fs, "/target/b.txt"))
}

func TestOrganize_CategoryCollisionRenames(t *testing.T) {
	svc, fs, _ := newRun(t, nil, core.OrganizerOptions{})
	require.NoError(t, afero.WriteFile(fs, "/target/Documents/b.txt", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/target/b.txt", []byte("new"), 0o644))

	_, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err)

	// The occupant is preserved, the incoming file gets a suffix.
	content, err := afero.ReadFile(fs, "/target/Documents/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))

	content, err = afero.ReadFile(fs, "/target/Documents/b_1.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestOrganize_Cancellation(t *testing.T) {
	svc, fs, _ := newRun(t, cleanScanner(), core.OrganizerOptions{SecurityEnabled: true})
	require.NoError(t, afero.WriteFile(fs, "/target/a.txt", []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Organize(ctx, "/target", nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Zero(t, result.Analytics.Security.Scanned)
	assert.True(t, exists(t, fs, "/target/a.txt"))
}

func TestOrganize_VerdictCacheSkipsRescan(t *testing.T) {
	calls := 0
	scanner := scanFunc(func(ctx context.Context, path string) (*core.ScanVerdict, error) {
		calls++
		return cleanScanner()(ctx, path)
	})

	fs := afero.NewMemMapFs()
	store, err := quarantine.NewStore(fs, "/quarantine", zap.NewNop())
	require.NoError(t, err)

	verdictCache := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	defer verdictCache.Stop()

	svc := core.NewOrganizerService(fs, scanner, verdictCache, store, zap.NewNop(), core.OrganizerOptions{
		SecurityEnabled: true,
		CacheEnabled:    true,
		CacheTTL:        time.Hour,
	})

	// Two files with identical content share a hash, so only one scan runs.
	require.NoError(t, afero.WriteFile(fs, "/target/a.txt", []byte("same content"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/target/b.txt", []byte("same content"), 0o644))

	result, err := svc.Organize(context.Background(), "/target", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, result.Analytics.Security.Scanned)
	assert.Equal(t, 2, result.Analytics.Security.Clean)

	cached := 0
	for _, v := range result.Verdicts {
		if v.Engine == "cache" {
			cached++
		}
	}
	assert.Equal(t, 1, cached)
}
