package rating

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordWithStringID(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "42",
		"imageUrl": "http://example.com/show.gif",
		"actualImageUrl": "http://cdn.example.com/real.gif",
		"likes": 10, "dislikes": 2, "impressions": 100, "credits": 5
	}`), &rec))

	assert.Equal(t, Record{
		ID:             "42",
		ImageURL:       "http://example.com/show.gif",
		ActualImageURL: "http://cdn.example.com/real.gif",
		Likes:          10,
		Dislikes:       2,
		Impressions:    100,
		Credits:        5,
	}, rec)
}

func TestDecodeRecordWithNumericID(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 1337,
		"imageUrl": "http://example.com/a.png",
		"likes": 0, "dislikes": 0, "impressions": 0, "credits": 0
	}`), &rec))

	assert.Equal(t, ID("1337"), rec.ID)
	assert.Equal(t, "http://example.com/a.png", rec.ActualImageURL, "actual URL falls back to image URL")
}

func TestDecodeIncompleteRecord(t *testing.T) {
	for name, payload := range map[string]string{
		"missing id":       `{"imageUrl":"u","likes":1,"dislikes":1,"impressions":1,"credits":1}`,
		"missing imageUrl": `{"id":"1","likes":1,"dislikes":1,"impressions":1,"credits":1}`,
		"missing credits":  `{"id":"1","imageUrl":"u","likes":1,"dislikes":1,"impressions":1}`,
		"negative likes":   `{"id":"1","imageUrl":"u","likes":-1,"dislikes":1,"impressions":1,"credits":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			var rec Record
			err := json.Unmarshal([]byte(payload), &rec)
			assert.ErrorIs(t, err, ErrIncompleteRecord)
		})
	}
}

func TestDecodeMalformedRecord(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`<html>down for maintenance</html>`), &rec)
	assert.Error(t, err)
}

func TestRecordSurvivesReencoding(t *testing.T) {
	in := Record{ID: "7", ImageURL: "http://x/a.png", ActualImageURL: "http://y/b.png", Likes: 3}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Record
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
