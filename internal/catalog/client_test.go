package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSearch(t *testing.T) {
	t.Run("DecodesItems", func(t *testing.T) {
		var gotBody searchPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/paapi5/searchitems", r.URL.Path)
			require.Equal(t, "ak", r.Header.Get("X-Access-Key"))
			require.NotEmpty(t, r.Header.Get("X-Request-Date"))
			require.NotEmpty(t, r.Header.Get("X-Signature"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"SearchResult": {
					"TotalResultCount": 1,
					"Items": [{
						"ASIN": "B000TEST01",
						"Offers": {"Listings": [{
							"Price": {"Amount": 8.00},
							"SavingBasis": {"Amount": 10.00}
						}]}
					}]
				}
			}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "ak", "sk", "goinup-20")
		resp, err := client.Search(context.Background(), SearchRequest{
			Keywords:         "trail mix",
			ItemCount:        10,
			MinPriceCents:    500,
			Condition:        ConditionNew,
			MinSavingPercent: 15,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.SearchResult)
		require.Len(t, resp.SearchResult.Items, 1)
		require.Equal(t, "B000TEST01", *resp.SearchResult.Items[0].ASIN)

		// Amounts must survive as decimal strings, not float64.
		amount := resp.SearchResult.Items[0].Offers.Listings[0].Price.Amount
		require.NotNil(t, amount)
		require.Equal(t, "8.00", amount.String())

		require.Equal(t, "trail mix", gotBody.Keywords)
		require.Equal(t, 500, gotBody.MinPrice)
		require.Equal(t, "New", gotBody.Condition)
		require.Equal(t, 15, gotBody.MinSavingPercent)
		require.Equal(t, "goinup-20", gotBody.PartnerTag)
	})

	t.Run("RateLimitStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"Errors": [{"Code": "TooManyRequests", "Message": "Request throttled"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "ak", "sk", "goinup-20")
		_, err := client.Search(context.Background(), SearchRequest{Keywords: "chips"})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.True(t, apiErr.RateLimited())
		require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		require.Equal(t, "TooManyRequests", apiErr.Code)
	})

	t.Run("InBodyErrors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Errors": [{"Code": "NoResults", "Message": "No results found"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "ak", "sk", "goinup-20")
		_, err := client.Search(context.Background(), SearchRequest{Keywords: "granola"})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.False(t, apiErr.RateLimited())
		require.Equal(t, "NoResults", apiErr.Code)
	})

	t.Run("NonJSONErrorBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		client := NewClient(server.URL, "ak", "sk", "goinup-20")
		_, err := client.Search(context.Background(), SearchRequest{Keywords: "granola"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Contains(t, apiErr.Message, "upstream unavailable")
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		client := NewClient("", "", "", "goinup-20")
		_, err := client.Search(context.Background(), SearchRequest{Keywords: "granola"})
		require.Error(t, err)
	})

	t.Run("MissingKeywords", func(t *testing.T) {
		client := NewClient("", "ak", "sk", "goinup-20")
		_, err := client.Search(context.Background(), SearchRequest{})
		require.Error(t, err)
	})
}

func TestAPIErrorRateLimited(t *testing.T) {
	require.True(t, (&APIError{StatusCode: 429}).RateLimited())
	require.True(t, (&APIError{Code: "TooManyRequests"}).RateLimited())
	require.True(t, (&APIError{Message: "Too Many Requests for key"}).RateLimited())
	require.False(t, (&APIError{StatusCode: 500, Code: "InternalFailure"}).RateLimited())
}
