package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/pkg/retrier"
)

// DefaultFearGreedURL is the public Fear & Greed index endpoint.
const DefaultFearGreedURL = "https://api.alternative.me/fng/"

// FearGreedClient fetches the crypto Fear & Greed index from
// alternative.me. The API needs no authentication.
type FearGreedClient struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewFearGreedClient creates a client for the given endpoint. Empty
// baseURL falls back to the public API; nil httpClient gets a default
// with a sane timeout.
func NewFearGreedClient(baseURL string, httpClient *http.Client) *FearGreedClient {
	if baseURL == "" {
		baseURL = DefaultFearGreedURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &FearGreedClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		retrier:    retrier.New(),
	}
}

type fearGreedResponse struct {
	Data []struct {
		Value     string `json:"value"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
}

// DailySentiment returns a date-indexed map of index values restricted to
// [startDate, endDate]. The API returns the full history with limit=0;
// rows with unparsable values or timestamps are skipped.
func (c *FearGreedClient) DailySentiment(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	resp, err := c.fetch(ctx, c.baseURL+"?limit=0&format=json")
	if err != nil {
		return nil, err
	}

	sentiments := make(map[string]int)
	for _, row := range resp.Data {
		unix, err := strconv.ParseInt(row.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		date := time.Unix(unix, 0).UTC().Format(domain.DateLayout)
		if date < startDate || date > endDate {
			continue
		}
		value, err := strconv.Atoi(row.Value)
		if err != nil || value < 0 || value > 100 {
			continue
		}
		sentiments[date] = value
	}
	return sentiments, nil
}

// Latest returns the most recent index value, for live and paper modes.
func (c *FearGreedClient) Latest(ctx context.Context) (int, error) {
	resp, err := c.fetch(ctx, c.baseURL+"?limit=1&format=json")
	if err != nil {
		return 0, err
	}
	if len(resp.Data) == 0 {
		return 0, errors.New("fear & greed API returned no data")
	}
	value, err := strconv.Atoi(resp.Data[0].Value)
	if err != nil {
		return 0, errors.Wrapf(err, "parse index value %q", resp.Data[0].Value)
	}
	if value < 0 || value > 100 {
		return 0, errors.Errorf("index value %d out of range", value)
	}
	return value, nil
}

func (c *FearGreedClient) fetch(ctx context.Context, url string) (*fearGreedResponse, error) {
	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (*fearGreedResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build fear & greed request")
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "fetch fear & greed index")
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, httpResp.Body)
			return nil, errors.Errorf("fear & greed API returned status %d", httpResp.StatusCode)
		}

		var resp fearGreedResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
			return nil, errors.Wrap(err, "decode fear & greed response")
		}
		return &resp, nil
	})
}
