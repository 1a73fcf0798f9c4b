// Package bluesky posts deal announcements over the AT Protocol.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHost    = "https://bsky.social"
	defaultTimeout = 30 * time.Second

	sessionPath    = "/xrpc/com.atproto.server.createSession"
	uploadBlobPath = "/xrpc/com.atproto.repo.uploadBlob"
	createPath     = "/xrpc/com.atproto.repo.createRecord"

	postCollection = "app.bsky.feed.post"
)

// APIError represents an error response from the AT Protocol service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("bluesky API error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("bluesky API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to a Bluesky PDS. A session is created lazily on first use
// and reused for subsequent calls.
type Client struct {
	Host        string
	Handle      string
	AppPassword string
	HTTPClient  *http.Client
	Timeout     time.Duration

	session *session
}

type session struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

// NewClient creates a Bluesky client for the given account.
func NewClient(host, handle, appPassword string) *Client {
	if strings.TrimSpace(host) == "" {
		host = defaultHost
	}
	return &Client{
		Host:        strings.TrimRight(host, "/"),
		Handle:      handle,
		AppPassword: appPassword,
		HTTPClient:  &http.Client{},
		Timeout:     defaultTimeout,
	}
}

// Login authenticates and caches the session token.
func (c *Client) Login(ctx context.Context) error {
	if c == nil {
		return errors.New("bluesky client is nil")
	}
	if strings.TrimSpace(c.Handle) == "" || strings.TrimSpace(c.AppPassword) == "" {
		return errors.New("bluesky handle and app password are required")
	}

	body, err := json.Marshal(map[string]string{
		"identifier": c.Handle,
		"password":   c.AppPassword,
	})
	if err != nil {
		return fmt.Errorf("encode session request: %w", err)
	}

	var sess session
	if err := c.do(ctx, http.MethodPost, sessionPath, "application/json", bytes.NewReader(body), "", &sess); err != nil {
		return fmt.Errorf("create bluesky session: %w", err)
	}
	if sess.AccessJWT == "" || sess.DID == "" {
		return errors.New("bluesky session response missing credentials")
	}

	c.session = &sess
	return nil
}

// UploadBlob uploads raw image bytes and returns the blob reference to
// embed in a post.
func (c *Client) UploadBlob(ctx context.Context, data []byte, contentType string) (json.RawMessage, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var result struct {
		Blob json.RawMessage `json:"blob"`
	}
	err := c.do(ctx, http.MethodPost, uploadBlobPath, contentType, bytes.NewReader(data), c.session.AccessJWT, &result)
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	if len(result.Blob) == 0 {
		return nil, errors.New("blob upload response missing blob reference")
	}
	return result.Blob, nil
}

// postRecord is the app.bsky.feed.post record body.
type postRecord struct {
	Type      string      `json:"$type"`
	Text      string      `json:"text"`
	CreatedAt string      `json:"createdAt"`
	Facets    []Facet     `json:"facets,omitempty"`
	Embed     *ImageEmbed `json:"embed,omitempty"`
}

// CreatePost publishes a post and returns its AT URI.
func (c *Client) CreatePost(ctx context.Context, text string, facets []Facet, embed *ImageEmbed) (string, error) {
	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}

	record := postRecord{
		Type:      postCollection,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Facets:    facets,
		Embed:     embed,
	}
	body, err := json.Marshal(map[string]any{
		"repo":       c.session.DID,
		"collection": postCollection,
		"record":     record,
	})
	if err != nil {
		return "", fmt.Errorf("encode post record: %w", err)
	}

	var result struct {
		URI string `json:"uri"`
	}
	err = c.do(ctx, http.MethodPost, createPath, "application/json", bytes.NewReader(body), c.session.AccessJWT, &result)
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return result.URI, nil
}

func (c *Client) ensureSession(ctx context.Context) error {
	if c == nil {
		return errors.New("bluesky client is nil")
	}
	if c.session != nil {
		return nil
	}
	return c.Login(ctx)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, token string, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.Host+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, payload)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func apiError(status int, body []byte) error {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.Error != "" || parsed.Message != "") {
		return &APIError{StatusCode: status, Code: parsed.Error, Message: parsed.Message}
	}

	message := strings.TrimSpace(string(body))
	if len(message) > 200 {
		message = message[:200]
	}
	return &APIError{StatusCode: status, Message: message}
}
