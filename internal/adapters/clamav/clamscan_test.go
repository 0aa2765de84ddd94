package clamav

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

func TestParseClamscanOutput(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantStatus core.VerdictStatus
		wantSig    string
		wantDetail string
	}{
		{
			name:       "clean",
			output:     "/tmp/a.txt: OK\n",
			wantStatus: core.StatusClean,
			wantDetail: "OK",
		},
		{
			name:       "infected",
			output:     "/tmp/evil.exe: Eicar-Test-Signature FOUND\n",
			wantStatus: core.StatusInfected,
			wantSig:    "Eicar-Test-Signature",
			wantDetail: "Eicar-Test-Signature FOUND",
		},
		{
			name:       "infected without colon",
			output:     "Eicar-Test-Signature FOUND",
			wantStatus: core.StatusInfected,
			wantSig:    "Eicar-Test-Signature",
			wantDetail: "Eicar-Test-Signature FOUND",
		},
		{
			name:       "unrecognized output",
			output:     "LibClamAV Warning: something odd\n",
			wantStatus: core.StatusClean,
			wantDetail: "LibClamAV Warning: something odd",
		},
		{
			name:       "empty output",
			output:     "",
			wantStatus: core.StatusUnknown,
			wantDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, sig, detail := ParseClamscanOutput(tt.output)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantSig, sig)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestClamscanScanner_BinaryNotInstalled(t *testing.T) {
	s := NewClamscanScanner("definitely-not-a-clamscan-binary", time.Second, zap.NewNop())

	verdict, err := s.Scan(context.Background(), "/tmp/whatever.txt")
	require.NoError(t, err, "a missing tool is a detectability gap, not a crash")

	assert.Equal(t, core.StatusUnknown, verdict.Status)
	assert.Equal(t, NotInstalledDetail, verdict.Detail)
	assert.Equal(t, "clamscan", verdict.Engine)
}
