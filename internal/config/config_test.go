package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	sec := cfg.GetSecurity()
	assert.True(t, sec.Enabled)
	assert.Equal(t, "auto", sec.Engine)
	assert.Equal(t, "localhost:3310", sec.ClamdAddress)
	assert.Equal(t, "clamscan", sec.ClamscanPath)
	assert.Equal(t, "30s", sec.ScanTimeout)

	assert.Equal(t, "quarantine", cfg.GetQuarantine().Dir)

	cacheCfg := cfg.GetCache()
	assert.Equal(t, "memory", cacheCfg.Type)
	assert.True(t, cacheCfg.Enabled)
	assert.Equal(t, "24h", cacheCfg.TTL)
	assert.Equal(t, "1h", cacheCfg.CleanupFrequency)

	notify := cfg.GetNotify()
	assert.False(t, notify.Enabled)
	assert.Equal(t, 587, notify.SMTPPort)
	assert.True(t, notify.StartTLS)

	assert.Equal(t, "info", cfg.GetString("logging.level"))
	assert.Equal(t, "json", cfg.GetString("logging.format"))
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("security.engine", "clamd")
	v.Set("quarantine.dir", "/var/lib/file-warden/quarantine")
	v.Set("organizer.mime_expectations", map[string]string{
		"pdf": "application/pdf",
		"jpg": "image/",
	})
	cfg := NewFromViper(v)

	assert.Equal(t, "clamd", cfg.GetSecurity().Engine)
	assert.Equal(t, "/var/lib/file-warden/quarantine", cfg.GetQuarantine().Dir)

	expectations := cfg.GetOrganizer().MimeExpectations
	assert.Equal(t, "application/pdf", expectations["pdf"])
	assert.Equal(t, "image/", expectations["jpg"])
}

func TestGetDuration(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)

	timeout, err := cfg.GetDuration("security.scan_timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	v := NewEmptyViper()
	v.Set("cache.ttl", "not-a-duration")
	_, err = NewFromViper(v).GetDuration("cache.ttl")
	assert.Error(t, err)
}
