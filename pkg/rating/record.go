// Package rating contains the rating record served by the remote API and
// the fetcher retrieving records and their images
package rating

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrIncompleteRecord signals a record lacking one of the fields
// required to render it
var ErrIncompleteRecord = errors.New("incomplete rating record")

type (
	// ID is the opaque identifier of a record. The API has served it
	// both as string and as number, both are kept in textual form.
	ID string

	// Record describes one rated image
	Record struct {
		ID             ID     `json:"id"`
		ImageURL       string `json:"imageUrl"`
		ActualImageURL string `json:"actualImageUrl"`
		Likes          int64  `json:"likes"`
		Dislikes       int64  `json:"dislikes"`
		Impressions    int64  `json:"impressions"`
		Credits        int64  `json:"credits"`
	}

	wireRecord struct {
		ID             *ID     `json:"id"`
		ImageURL       *string `json:"imageUrl"`
		ActualImageURL *string `json:"actualImageUrl"`
		Likes          *int64  `json:"likes"`
		Dislikes       *int64  `json:"dislikes"`
		Impressions    *int64  `json:"impressions"`
		Credits        *int64  `json:"credits"`
	}
)

// UnmarshalJSON accepts both JSON strings and numbers
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode string id")
		}
		*i = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "decode numeric id")
	}
	*i = ID(n.String())
	return nil
}

// String implements fmt.Stringer
func (i ID) String() string { return string(i) }

// UnmarshalJSON decodes a record and rejects it when a field required
// for rendering is missing or a counter is negative
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode rating record")
	}

	switch {
	case w.ID == nil || *w.ID == "":
		return errors.Wrap(ErrIncompleteRecord, "missing id")
	case w.ImageURL == nil || *w.ImageURL == "":
		return errors.Wrap(ErrIncompleteRecord, "missing imageUrl")
	case w.Likes == nil, w.Dislikes == nil, w.Impressions == nil, w.Credits == nil:
		return errors.Wrap(ErrIncompleteRecord, "missing counter")
	case *w.Likes < 0, *w.Dislikes < 0, *w.Impressions < 0, *w.Credits < 0:
		return errors.Wrap(ErrIncompleteRecord, "negative counter")
	}

	*r = Record{
		ID:          *w.ID,
		ImageURL:    *w.ImageURL,
		Likes:       *w.Likes,
		Dislikes:    *w.Dislikes,
		Impressions: *w.Impressions,
		Credits:     *w.Credits,
	}

	r.ActualImageURL = r.ImageURL
	if w.ActualImageURL != nil && *w.ActualImageURL != "" {
		r.ActualImageURL = *w.ActualImageURL
	}

	return nil
}
