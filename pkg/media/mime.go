package media

import "strings"

// Some clients send uploads as application/octet-stream regardless of the
// actual content, so both lists accept it; the decode step is the real gate.
var imageMIMETypes = map[string]struct{}{
	"image/jpeg":               {},
	"image/jpg":                {},
	"image/png":                {},
	"image/gif":                {},
	"image/webp":               {},
	"application/octet-stream": {},
}

var audioMIMETypes = map[string]struct{}{
	"audio/mpeg":               {},
	"audio/mp3":                {},
	"audio/wav":                {},
	"audio/x-wav":              {},
	"audio/wave":               {},
	"application/octet-stream": {},
}

func normalizeMIME(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func allowedImage(contentType string) bool {
	_, ok := imageMIMETypes[normalizeMIME(contentType)]
	return ok
}

func allowedAudio(contentType string) bool {
	_, ok := audioMIMETypes[normalizeMIME(contentType)]
	return ok
}
