package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_TableExtensions(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".pdf", "Documents"},
		{".docx", "Documents"},
		{".txt", "Documents"},
		{".pptx", "Documents"},
		{".xlsx", "Documents"},
		{".csv", "Documents"},
		{".jpg", "Images"},
		{".jpeg", "Images"},
		{".png", "Images"},
		{".gif", "Images"},
		{".bmp", "Images"},
		{".svg", "Images"},
		{".mp4", "Videos"},
		{".mkv", "Videos"},
		{".avi", "Videos"},
		{".mov", "Videos"},
		{".mp3", "Music"},
		{".wav", "Music"},
		{".aac", "Music"},
		{".flac", "Music"},
		{".zip", "Archives"},
		{".rar", "Archives"},
		{".tar", "Archives"},
		{".gz", "Archives"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ext))
		})
	}
}

func TestClassify_Normalization(t *testing.T) {
	assert.Equal(t, "Images", Classify(".JPG"))
	assert.Equal(t, "Images", Classify("jpg"))
	assert.Equal(t, "Documents", Classify("PDF"))
}

func TestClassify_MimeFallback(t *testing.T) {
	// Not in the extension table, but its registered MIME type is
	// image/webp, so the pluralized primary type wins.
	assert.Equal(t, "Images", Classify(".webp"))
}

func TestClassify_Others(t *testing.T) {
	assert.Equal(t, "Others", Classify(".xyzunknown"))
	assert.Equal(t, "Others", Classify(""))
	// Known MIME type but not image/video/audio.
	assert.Equal(t, "Others", Classify(".json"))
}

func TestClassify_TableIsCollisionFree(t *testing.T) {
	seen := map[string]string{}
	for _, rule := range categoryRules {
		for _, ext := range rule.exts {
			owner, dup := seen[ext]
			assert.Falsef(t, dup, "extension %s owned by both %s and %s", ext, owner, rule.name)
			seen[ext] = rule.name
		}
	}
}
