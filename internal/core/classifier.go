package core

import (
	"mime"
	"strings"
)

// FallbackCategory is the bucket for files no rule matches
const FallbackCategory = "Others"

// categoryRule maps a set of extensions to a destination category
type categoryRule struct {
	name string
	exts []string
}

// categoryRules is consulted in order, first match wins. Extensions must
// not repeat across rules so a lookup has exactly one owner.
var categoryRules = []categoryRule{
	{"Documents", []string{".pdf", ".docx", ".txt", ".pptx", ".xlsx", ".csv"}},
	{"Images", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"}},
	{"Videos", []string{".mp4", ".mkv", ".avi", ".mov"}},
	{"Music", []string{".mp3", ".wav", ".aac", ".flac"}},
	{"Archives", []string{".zip", ".rar", ".tar", ".gz"}},
}

// Classify returns the category name for a file extension. The extension
// table is tried first; on a miss the extension's registered MIME type
// decides for image/video/audio content, and everything else falls back
// to "Others". Always returns a non-empty category.
func Classify(extension string) string {
	ext := strings.ToLower(extension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	for _, rule := range categoryRules {
		for _, e := range rule.exts {
			if e == ext {
				return rule.name
			}
		}
	}

	if mt := mime.TypeByExtension(ext); mt != "" {
		primary := strings.SplitN(mt, "/", 2)[0]
		switch primary {
		case "image", "video", "audio":
			return strings.ToUpper(primary[:1]) + primary[1:] + "s"
		}
	}

	return FallbackCategory
}
