// Package result turns a rating record into the entries shown by the
// launcher
package result

import (
	"fmt"
	"strings"

	"github.com/Luzifer/lgtm/pkg/rating"
)

// Entry is one selectable item of the result list
type Entry struct {
	ID       string
	Arg      string
	Title    string
	Subtitle string
	Icon     string
}

// Render creates the markdown image entry followed by the raw URL
// entry. imagePath may be empty when no image is cached.
func Render(rec rating.Record, imagePath string) []Entry {
	var (
		markdown = fmt.Sprintf("![%[1]s](%[1]s)", rec.ImageURL)
		subtitle = Subtitle(rec)
	)

	return []Entry{
		{
			ID:       rec.ID.String(),
			Arg:      markdown,
			Title:    markdown,
			Subtitle: subtitle,
			Icon:     imagePath,
		},
		{
			ID:       rec.ID.String(),
			Arg:      rec.ImageURL,
			Title:    rec.ImageURL,
			Subtitle: subtitle,
			Icon:     imagePath,
		},
	}
}

// Subtitle summarizes the counters of the record
func Subtitle(rec rating.Record) string {
	return strings.Join([]string{
		fmt.Sprintf("likes:%d", rec.Likes),
		fmt.Sprintf("dislikes:%d", rec.Dislikes),
		fmt.Sprintf("impressions:%d", rec.Impressions),
		fmt.Sprintf("credits:%d", rec.Credits),
	}, " ")
}
