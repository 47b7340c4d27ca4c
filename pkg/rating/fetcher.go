package rating

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const acceptHeader = "application/json, text/javascript"

// Fetcher retrieves rating records and image contents from the remote API
type Fetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
	FetchRecord(ctx context.Context) (*Record, error)
}

// HTTPFetcher implements Fetcher using plain HTTP GET requests
type HTTPFetcher struct {
	client    *http.Client
	endpoint  string
	logger    logrus.FieldLogger
	userAgent string
}

var _ Fetcher = HTTPFetcher{}

// NewHTTPFetcher creates a Fetcher querying the given endpoint. A zero
// timeout leaves requests bounded by their context only.
func NewHTTPFetcher(endpoint, userAgent string, timeout time.Duration, logger logrus.FieldLogger) HTTPFetcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		logger:    logger,
		userAgent: userAgent,
	}
}

// FetchRecord retrieves the current record from the endpoint
func (f HTTPFetcher) FetchRecord(ctx context.Context) (*Record, error) {
	body, err := f.get(ctx, f.endpoint, acceptHeader)
	if err != nil {
		return nil, errors.Wrap(err, "fetch rating record")
	}

	rec := new(Record)
	if err = json.Unmarshal(body, rec); err != nil {
		return nil, errors.Wrap(err, "parse rating record")
	}

	return rec, nil
}

// FetchImage downloads the raw image contents
func (f HTTPFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	body, err := f.get(ctx, imageURL, "")
	return body, errors.Wrap(err, "fetch image")
}

func (f HTTPFetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	logger := f.logger.WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	logger.Debug("requesting remote resource")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute request")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.WithError(err).Error("closing response body (leaked fd)")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return nil, errors.Errorf("HTTP status signaled failure: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	return body, nil
}
