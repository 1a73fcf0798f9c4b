package bluesky

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/core"
)

// Poster publishes deal announcements. Image embedding is best-effort; a
// deal still posts when its image cannot be fetched or uploaded.
type Poster struct {
	Client      *Client
	ImageClient *http.Client
	Logger      *logging.Logger
}

// NewPoster creates a Poster around an authenticated client.
func NewPoster(client *Client, logger *logging.Logger) *Poster {
	return &Poster{
		Client:      client,
		ImageClient: &http.Client{},
		Logger:      logger,
	}
}

// PostDeal formats and publishes a single deal, returning the post's AT URI.
func (p *Poster) PostDeal(ctx context.Context, deal core.Deal) (string, error) {
	if p == nil || p.Client == nil {
		return "", errors.New("poster requires a bluesky client")
	}

	text, facets := FormatPost(deal)
	embed := p.buildEmbed(ctx, deal)

	uri, err := p.Client.CreatePost(ctx, text, facets, embed)
	if err != nil {
		return "", fmt.Errorf("post deal %s: %w", deal.ASIN, err)
	}

	if p.Logger != nil {
		p.Logger.Info("Posted deal to Bluesky",
			zap.String("asin", deal.ASIN),
			zap.String("uri", uri),
			zap.Int("discount_percent", deal.DiscountPercent))
	}
	return uri, nil
}

func (p *Poster) buildEmbed(ctx context.Context, deal core.Deal) *ImageEmbed {
	if deal.ImageURL == "" {
		return nil
	}

	data, contentType, err := FetchImage(ctx, p.ImageClient, deal.ImageURL)
	if err != nil {
		p.warn("Skipping image embed", deal.ASIN, err)
		return nil
	}

	blob, err := p.Client.UploadBlob(ctx, data, contentType)
	if err != nil {
		p.warn("Skipping image embed", deal.ASIN, err)
		return nil
	}

	return NewImageEmbed(blob, TruncateTitle(deal.Title))
}

func (p *Poster) warn(msg, asin string, err error) {
	if p.Logger == nil {
		return
	}
	p.Logger.Warn(msg, zap.String("asin", asin), zap.Error(err))
}
