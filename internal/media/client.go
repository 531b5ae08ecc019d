// Package media implements the builtin tool services against the REST API
// of an upstream media automation server. Every mediatools interface is
// satisfied by one Client, so wiring the catalogue takes a single value.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/halim/toolbridge/pkg/mediatools"
)

// Client talks to the upstream server. It implements every service interface
// in pkg/mediatools.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an upstream client.
func NewClient(baseURL, token string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "media-client").Logger(),
	}
}

// Services returns the full service bundle backed by this client.
func (c *Client) Services() mediatools.Services {
	return mediatools.Services{
		Media:       c,
		Torrents:    c,
		Subscribes:  c,
		Downloads:   c.Downloads(),
		Sites:       c.Sites(),
		Recommender: c,
		Library:     c,
		Messenger:   c,
	}
}

// do performs one upstream request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Upstream returned error status")
		return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// Search implements mediatools.MediaSearcher.
func (c *Client) Search(ctx context.Context, title, year, mediaType string, season int) ([]mediatools.MediaItem, error) {
	query := url.Values{"title": {title}}
	if year != "" {
		query.Set("year", year)
	}
	if mediaType != "" {
		query.Set("type", mediaType)
	}
	if season > 0 {
		query.Set("season", strconv.Itoa(season))
	}

	var items []mediatools.MediaItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/media/search", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchTorrents implements mediatools.TorrentSearcher.
func (c *Client) SearchTorrents(ctx context.Context, title string, sites []int) ([]mediatools.Torrent, error) {
	payload := map[string]interface{}{"keyword": title}
	if len(sites) > 0 {
		payload["sites"] = sites
	}

	var torrents []mediatools.Torrent
	if err := c.do(ctx, http.MethodPost, "/api/v1/search/title", nil, payload, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// Add implements mediatools.SubscribeService.
func (c *Client) Add(ctx context.Context, req mediatools.SubscribeRequest) (int64, error) {
	payload := map[string]interface{}{
		"name":     req.Title,
		"year":     req.Year,
		"type":     req.MediaType,
		"username": req.Username,
	}
	if req.Season > 0 {
		payload["season"] = req.Season
	}
	if req.TMDBID > 0 {
		payload["tmdbid"] = req.TMDBID
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscribe/", nil, payload, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// List implements mediatools.SubscribeService.
func (c *Client) List(ctx context.Context) ([]mediatools.Subscription, error) {
	var subs []mediatools.Subscription
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscribe/", nil, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// downloadService splits the DownloadService methods off the client so they
// do not collide with SubscribeService's Add and List.
type downloadService struct{ c *Client }

// Downloads returns the client's download service.
func (c *Client) Downloads() mediatools.DownloadService {
	return downloadService{c}
}

func (d downloadService) Add(ctx context.Context, req mediatools.DownloadRequest) (string, error) {
	payload := map[string]interface{}{
		"title":    req.TorrentTitle,
		"url":      req.TorrentURL,
		"username": req.Username,
	}
	if req.Downloader != "" {
		payload["downloader"] = req.Downloader
	}
	if req.SavePath != "" {
		payload["save_path"] = req.SavePath
	}
	if req.Labels != "" {
		payload["labels"] = req.Labels
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := d.c.do(ctx, http.MethodPost, "/api/v1/download/add", nil, payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (d downloadService) List(ctx context.Context, downloader, status string) ([]mediatools.DownloadTask, error) {
	query := url.Values{}
	if downloader != "" {
		query.Set("downloader", downloader)
	}
	if status != "" && status != "all" {
		query.Set("status", status)
	}

	var tasks []mediatools.DownloadTask
	if err := d.c.do(ctx, http.MethodGet, "/api/v1/download/", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// siteService splits SiteService off the client for the same reason.
type siteService struct{ c *Client }

// Sites returns the client's site service.
func (c *Client) Sites() mediatools.SiteService {
	return siteService{c}
}

func (s siteService) List(ctx context.Context) ([]mediatools.Site, error) {
	var sites []mediatools.Site
	if err := s.c.do(ctx, http.MethodGet, "/api/v1/site/", nil, nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// Recommend implements mediatools.Recommender.
func (c *Client) Recommend(ctx context.Context, source, mediaType string, limit int) ([]mediatools.MediaItem, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if mediaType != "" && mediaType != "all" {
		query.Set("type", mediaType)
	}

	var items []mediatools.MediaItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/recommend/"+url.PathEscape(source), query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Query implements mediatools.LibraryService.
func (c *Client) Query(ctx context.Context, mediaType, title string) ([]mediatools.LibraryItem, error) {
	query := url.Values{}
	if mediaType != "" && mediaType != "all" {
		query.Set("type", mediaType)
	}
	if title != "" {
		query.Set("title", title)
	}

	var items []mediatools.LibraryItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/mediaserver/library", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Send implements mediatools.Messenger.
func (c *Client) Send(ctx context.Context, note mediatools.Notification) error {
	payload := map[string]interface{}{
		"userid": note.UserID,
		"title":  note.Title,
		"text":   note.Text,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/message/", nil, payload, nil)
}
