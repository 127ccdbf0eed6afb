package fetch

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// fallbackFilename is used when no usable name can be derived.
const fallbackFilename = "download.bin"

var (
	cdExtendedRe = regexp.MustCompile(`(?i)filename\*\s*=\s*UTF-8''([^;]+)`)
	cdQuotedRe   = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]+)"`)
	cdBareRe     = regexp.MustCompile(`(?i)filename\s*=\s*([^;]+)`)
)

// filenameFromContentDisposition extracts a filename from a
// Content-Disposition header. Checked in order:
//   - filename*=UTF-8''percent-encoded (RFC 5987)
//   - filename="quoted"
//   - filename=bare
//
// Only the base name is kept, so a path smuggled into the header cannot
// escape the destination directory.
func filenameFromContentDisposition(cd string) string {
	if cd == "" {
		return ""
	}

	if m := cdExtendedRe.FindStringSubmatch(cd); m != nil {
		name := strings.Trim(strings.TrimSpace(m[1]), `"`)
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
		return baseName(name)
	}

	if m := cdQuotedRe.FindStringSubmatch(cd); m != nil {
		return baseName(m[1])
	}

	if m := cdBareRe.FindStringSubmatch(cd); m != nil {
		return baseName(strings.Trim(strings.TrimSpace(m[1]), `"`))
	}

	return ""
}

// filenameFromURL takes the last non-empty path segment of a URL, with the
// query string removed and trailing slashes trimmed.
func filenameFromURL(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// safeFilename guards against path traversal: slashes become underscores and
// surrounding whitespace is trimmed. Anything else in the name is passed
// through unchanged. An empty result becomes the fallback name.
func safeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackFilename
	}
	return name
}

func baseName(name string) string {
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
