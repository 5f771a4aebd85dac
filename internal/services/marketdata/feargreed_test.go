package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timestamps: 2024-01-01, 2024-01-02, 2024-01-03 midnight UTC
const fearGreedPayload = `{
	"name": "Fear and Greed Index",
	"data": [
		{"value": "70", "value_classification": "Greed", "timestamp": "1704240000"},
		{"value": "25", "value_classification": "Fear", "timestamp": "1704153600"},
		{"value": "12", "value_classification": "Extreme Fear", "timestamp": "1704067200"},
		{"value": "not-a-number", "value_classification": "?", "timestamp": "1703980800"},
		{"value": "40", "value_classification": "Fear", "timestamp": "garbage"}
	]
}`

func TestFearGreedClient_DailySentiment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("limit"))
		w.Write([]byte(fearGreedPayload))
	}))
	defer server.Close()

	client := NewFearGreedClient(server.URL, server.Client())
	sentiments, err := client.DailySentiment(context.Background(), "2024-01-01", "2024-01-02")
	require.NoError(t, err)

	// the greed day falls outside the range, malformed rows are skipped
	assert.Equal(t, map[string]int{
		"2024-01-01": 12,
		"2024-01-02": 25,
	}, sentiments)
}

func TestFearGreedClient_Latest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data": [{"value": "31", "timestamp": "1704240000"}]}`))
	}))
	defer server.Close()

	client := NewFearGreedClient(server.URL, server.Client())
	value, err := client.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 31, value)
}

func TestFearGreedClient_LatestEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewFearGreedClient(server.URL, server.Client())
	_, err := client.Latest(context.Background())
	assert.Error(t, err)
}
