package objectstore

import (
	"errors"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrTypeMismatch is returned by Resolve when the declared content type
// names a different kind of media than the bytes actually are.
var ErrTypeMismatch = errors.New("objectstore: declared content type does not match content")

// Sniff returns the content type detected from head, without parameters.
// Unrecognized bytes sniff as application/octet-stream.
func Sniff(head []byte) string {
	return baseType(mimetype.Detect(head).String())
}

// Resolve returns the sniffed type of head. The declared type is advisory:
// when it is specific (not empty or octet-stream) its top-level type must
// agree with the sniffed one, otherwise ErrTypeMismatch. A declared
// image/jpeg over PNG bytes resolves to image/png.
func Resolve(declared string, head []byte) (string, error) {
	sniffed := Sniff(head)
	d := baseType(declared)
	if d == "" || d == "application/octet-stream" {
		return sniffed, nil
	}
	if topLevel(d) != topLevel(sniffed) {
		return sniffed, ErrTypeMismatch
	}
	return sniffed, nil
}

// Extension is the object-key extension for a content type: the subtype,
// cut before any structured suffix ("image/svg+xml" -> "svg").
func Extension(contentType string) string {
	_, sub, ok := strings.Cut(baseType(contentType), "/")
	if !ok || sub == "" {
		return "bin"
	}
	sub, _, _ = strings.Cut(sub, "+")
	return sub
}

// IsImage reports whether contentType is an image/* type other than SVG.
// SVG documents can carry script and are served world-readable.
func IsImage(contentType string) bool {
	ct := baseType(contentType)
	return strings.HasPrefix(ct, "image/") && ct != "image/svg+xml"
}

// IsVideo reports whether contentType is a video/* type.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(baseType(contentType), "video/")
}

func topLevel(ct string) string {
	top, _, _ := strings.Cut(ct, "/")
	return top
}

func baseType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
