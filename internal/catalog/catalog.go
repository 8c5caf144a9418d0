// package catalog wraps the iTunes Search API behind a narrow, fail-soft client.
//
// The upstream catalog is a best-effort external dependency: network failures,
// non-2xx statuses and malformed payloads are absorbed and logged, never
// surfaced as hard errors to callers. Tracks without a preview clip are
// filtered out before results leave this package.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://itunes.apple.com"
	defaultLimit       = 25
	defaultArtworkLow  = "100x100bb"
	defaultArtworkHigh = "600x600bb"
)

// itunesResult holds the subset of the upstream response this system consumes.
type itunesResult struct {
	TrackID         int64  `json:"trackId"`
	TrackName       string `json:"trackName"`
	ArtistName      string `json:"artistName"`
	CollectionName  string `json:"collectionName"`
	ArtworkURL100   string `json:"artworkUrl100"`
	PreviewURL      string `json:"previewUrl"`
	TrackTimeMillis int64  `json:"trackTimeMillis"`
}

type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

// Client queries the iTunes Search API and normalizes results into [models.Track].
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *log.Logger
	artworkLow  string
	artworkHigh string
}

// NewClient creates a catalog client from configuration.
//
// A nil httpClient falls back to a client with the configured timeout; a zero
// requests_per_min disables throttling.
func NewClient(cfg shared.CatalogConfig, httpClient *http.Client, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ArtworkLowPath == "" {
		cfg.ArtworkLowPath = defaultArtworkLow
	}
	if cfg.ArtworkHighPath == "" {
		cfg.ArtworkHighPath = defaultArtworkHigh
	}
	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if cfg.RequestsPerMin > 0 {
		limit = rate.Limit(cfg.RequestsPerMin / 60)
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		artworkLow:  cfg.ArtworkLowPath,
		artworkHigh: cfg.ArtworkHighPath,
	}
}

// Search queries the catalog for tracks matching term.
//
// The upstream is asked for twice the requested limit to compensate for
// post-filter attrition; unplayable results are dropped and the remainder
// truncated to limit. Returns an empty slice on any upstream failure.
func (c *Client) Search(ctx context.Context, term string, limit int) []models.Track {
	return c.searchWith(ctx, term, limit, "")
}

// SearchByArtist queries the catalog restricted to the artist name attribute.
func (c *Client) SearchByArtist(ctx context.Context, artist string, limit int) []models.Track {
	return c.searchWith(ctx, artist, limit, "artistTerm")
}

// SearchByGenre queries the catalog by genre name. The upstream has no genre
// attribute for song entities, so this is a plain term search.
func (c *Client) SearchByGenre(ctx context.Context, genre string, limit int) []models.Track {
	return c.searchWith(ctx, genre, limit, "")
}

// Lookup fetches a single track by its catalog identifier.
//
// Returns nil when the track does not exist, has no preview clip, or the
// upstream request fails.
func (c *Client) Lookup(ctx context.Context, trackID string) *models.Track {
	query := url.Values{}
	query.Set("id", trackID)
	query.Set("entity", "song")

	resp, err := c.fetch(ctx, "/lookup", query)
	if err != nil {
		c.logger.Warn("catalog lookup failed", "trackId", trackID, "error", err)
		return nil
	}

	if len(resp.Results) == 0 || resp.Results[0].PreviewURL == "" {
		return nil
	}

	track := c.resultToTrack(resp.Results[0])
	return &track
}

func (c *Client) searchWith(ctx context.Context, term string, limit int, attribute string) []models.Track {
	if limit <= 0 {
		limit = defaultLimit
	}

	query := url.Values{}
	query.Set("term", term)
	query.Set("media", "music")
	query.Set("entity", "song")
	query.Set("limit", fmt.Sprintf("%d", limit*2))
	if attribute != "" {
		query.Set("attribute", attribute)
	}

	resp, err := c.fetch(ctx, "/search", query)
	if err != nil {
		c.logger.Warn("catalog search failed", "term", term, "error", err)
		return []models.Track{}
	}

	tracks := make([]models.Track, 0, limit)
	for _, item := range resp.Results {
		if item.PreviewURL == "" {
			continue
		}
		tracks = append(tracks, c.resultToTrack(item))
		if len(tracks) == limit {
			break
		}
	}

	return tracks
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}

	requestURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}

	return &decoded, nil
}

// resultToTrack maps an upstream result to the canonical track record,
// rewriting the thumbnail path segment to request a higher-resolution asset.
func (c *Client) resultToTrack(item itunesResult) models.Track {
	return models.Track{
		ID:         fmt.Sprintf("%d", item.TrackID),
		Title:      item.TrackName,
		Artist:     item.ArtistName,
		Album:      item.CollectionName,
		CoverURL:   strings.Replace(item.ArtworkURL100, c.artworkLow, c.artworkHigh, 1),
		Duration:   formatDuration(item.TrackTimeMillis),
		PreviewURL: item.PreviewURL,
	}
}

// formatDuration renders track length in millis as "m:ss".
func formatDuration(millis int64) string {
	if millis <= 0 {
		return ""
	}
	minutes := millis / 60000
	seconds := (millis % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
