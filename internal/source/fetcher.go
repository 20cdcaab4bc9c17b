package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Fetcher retrieves the record list of one endpoint. Implementations must
// return ctx.Err() once ctx is cancelled.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]Record, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, endpoint string) ([]Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, endpoint string) ([]Record, error) {
	return f(ctx, endpoint)
}

// HTTPFetcher GETs endpoint+Path and decodes a JSON array of records.
type HTTPFetcher struct {
	client *http.Client
	path   string
}

// NewHTTPFetcher returns a fetcher appending path to every endpoint.
// A nil client gets a client without a timeout.
func NewHTTPFetcher(client *http.Client, path string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{client: client, path: path}
}

// Path returns the suffix appended to every endpoint.
func (f *HTTPFetcher) Path() string {
	return f.path
}

func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+f.path, nil)
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Message: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &RequestFailedError{
			StatusCode: res.StatusCode,
			Reason:     reasonPhrase(res),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Message: err.Error()}
	}

	return decodeRecords(body)
}

func decodeRecords(body []byte) ([]Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if records == nil {
		records = []Record{}
	}

	return records, nil
}

func reasonPhrase(res *http.Response) string {
	reason := strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode))
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}
	return reason
}
