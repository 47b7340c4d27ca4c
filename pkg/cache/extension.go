package cache

import (
	"net/url"
	"path"
	"strings"
)

// Extension returns the file extension (without the dot) of the last
// element of the URL path. Query and fragment are ignored, unparsable
// URLs and paths without a dot yield an empty string.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return ""
	}

	return strings.TrimPrefix(path.Ext(u.Path), ".")
}
