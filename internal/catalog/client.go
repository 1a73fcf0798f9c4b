package catalog

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://webservices.amazon.com"
	searchPath      = "/paapi5/searchitems"

	// ConditionNew restricts searches to new items.
	ConditionNew = "New"
)

var searchResources = []string{
	"ItemInfo.Title",
	"Offers.Listings.Price",
	"Offers.Listings.SavingBasis",
	"Images.Primary.Medium",
}

// SearchRequest describes one catalog search call.
type SearchRequest struct {
	Keywords         string
	ItemCount        int
	MinPriceCents    int
	Condition        string
	MinSavingPercent int
}

// Client talks to the product catalog search API via direct HTTP.
//
// Requests are signed with an HMAC-SHA256 of the request date, method, path
// and body digest under the secret key; the access key travels in a header.
type Client struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PartnerTag string
	HTTPClient *http.Client
	Timeout    time.Duration
	Clock      func() time.Time
}

// NewClient returns a client with defaults applied.
func NewClient(endpoint, accessKey, secretKey, partnerTag string) *Client {
	url := strings.TrimSpace(endpoint)
	if url == "" {
		url = defaultEndpoint
	}

	return &Client{
		Endpoint:   url,
		AccessKey:  strings.TrimSpace(accessKey),
		SecretKey:  strings.TrimSpace(secretKey),
		PartnerTag: strings.TrimSpace(partnerTag),
	}
}

type searchPayload struct {
	Keywords         string   `json:"Keywords"`
	ItemCount        int      `json:"ItemCount"`
	MinPrice         int      `json:"MinPrice,omitempty"`
	Condition        string   `json:"Condition,omitempty"`
	MinSavingPercent int      `json:"MinSavingPercent,omitempty"`
	PartnerTag       string   `json:"PartnerTag"`
	Resources        []string `json:"Resources"`
}

// Search executes one search call and decodes the raw response tree.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog client not configured")
	}
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return nil, fmt.Errorf("catalog credentials are required")
	}
	if strings.TrimSpace(req.Keywords) == "" {
		return nil, fmt.Errorf("keywords are required")
	}

	payload := searchPayload{
		Keywords:         req.Keywords,
		ItemCount:        req.ItemCount,
		MinPrice:         req.MinPriceCents,
		Condition:        req.Condition,
		MinSavingPercent: req.MinSavingPercent,
		PartnerTag:       c.PartnerTag,
		Resources:        searchResources,
	}
	if payload.ItemCount <= 0 {
		payload.ItemCount = 10
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	url := strings.TrimRight(c.Endpoint, "/") + searchPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	date := c.now().UTC().Format("20060102T150405Z")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Access-Key", c.AccessKey)
	httpReq.Header.Set("X-Request-Date", date)
	httpReq.Header.Set("X-Signature", c.sign(date, http.MethodPost, searchPath, body))

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, respBody)
	}

	decoder := json.NewDecoder(bytes.NewReader(respBody))
	decoder.UseNumber()

	var search SearchResponse
	if err := decoder.Decode(&search); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if search.SearchResult == nil && len(search.Errors) > 0 {
		first := search.Errors[0]
		return nil, &APIError{StatusCode: resp.StatusCode, Code: first.Code, Message: first.Message}
	}

	return &search, nil
}

func (c *Client) sign(date, method, path string, body []byte) string {
	digest := sha256.Sum256(body)

	mac := hmac.New(sha256.New, []byte(c.SecretKey))
	fmt.Fprintf(mac, "%s\n%s\n%s\n%s", date, method, path, hex.EncodeToString(digest[:]))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

func apiError(statusCode int, body []byte) *APIError {
	var payload struct {
		Errors []APIMessage `json:"Errors"`
	}

	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		first := payload.Errors[0]
		return &APIError{StatusCode: statusCode, Code: first.Code, Message: first.Message}
	}

	message := strings.TrimSpace(string(body))
	if len(message) > 256 {
		message = message[:256]
	}
	return &APIError{StatusCode: statusCode, Message: message}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
