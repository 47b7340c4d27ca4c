package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	for in, want := range map[string]string{
		"http://x/a/b.png":                "png",
		"http://x/a/b":                    "",
		"http://x/a/b.tar.gz":             "gz",
		"http://x/a/b.gif?size=large":     "gif",
		"http://x/a/b.JPG#frag":           "JPG",
		"http://x.example.com/dir.d/file": "",
		"http://x/a/b.":                   "",
		"http://x":                        "",
		"":                                "",
		"://broken":                       "",
	} {
		assert.Equal(t, want, Extension(in), in)
	}
}
