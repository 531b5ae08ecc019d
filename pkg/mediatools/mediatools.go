// Package mediatools binds the media automation tool catalogue to the
// gateway. Each tool is a thin adapter: it pulls typed values out of the
// validated argument map, delegates to a domain service, and shapes the
// outcome for the caller. The domain services themselves live outside the
// gateway and are injected as interfaces.
package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

// MediaItem is one entry of a media search or recommendation result.
type MediaItem struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Type     string `json:"type"` // movie or tv
	Season   int    `json:"season,omitempty"`
	TMDBID   int64  `json:"tmdb_id,omitempty"`
	Overview string `json:"overview,omitempty"`
}

// Torrent is one entry of a torrent search result.
type Torrent struct {
	Title   string `json:"title"`
	Site    string `json:"site"`
	Size    int64  `json:"size"`
	Seeders int    `json:"seeders"`
	PageURL string `json:"page_url"`
}

// Subscription is a stored media subscription.
type Subscription struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Type   string `json:"type"`
	State  string `json:"state"` // R enabled, P paused
	Season int    `json:"season,omitempty"`
}

// SubscribeRequest is the input for creating a subscription.
type SubscribeRequest struct {
	Title     string
	Year      string
	MediaType string
	Season    int
	TMDBID    int64
	Username  string
}

// DownloadTask is one entry of the download queue.
type DownloadTask struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Downloader string  `json:"downloader"`
	State      string  `json:"state"`
	Progress   float64 `json:"progress"`
}

// DownloadRequest is the input for adding a torrent download.
type DownloadRequest struct {
	TorrentTitle string
	TorrentURL   string
	Downloader   string
	SavePath     string
	Labels       string
	Username     string
}

// Site is an indexer site known to the server.
type Site struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// LibraryItem is one entry of the media library.
type LibraryItem struct {
	Title string `json:"title"`
	Year  string `json:"year"`
	Type  string `json:"type"`
	Path  string `json:"path"`
}

// Notification is a message pushed to the calling user.
type Notification struct {
	UserID string
	Title  string
	Text   string
}

// MediaSearcher looks up media metadata.
type MediaSearcher interface {
	Search(ctx context.Context, title, year, mediaType string, season int) ([]MediaItem, error)
}

// TorrentSearcher searches indexer sites for downloadable torrents.
type TorrentSearcher interface {
	SearchTorrents(ctx context.Context, title string, sites []int) ([]Torrent, error)
}

// SubscribeService manages media subscriptions.
type SubscribeService interface {
	Add(ctx context.Context, req SubscribeRequest) (int64, error)
	List(ctx context.Context) ([]Subscription, error)
}

// DownloadService manages the download queue.
type DownloadService interface {
	Add(ctx context.Context, req DownloadRequest) (string, error)
	List(ctx context.Context, downloader, status string) ([]DownloadTask, error)
}

// SiteService lists indexer sites.
type SiteService interface {
	List(ctx context.Context) ([]Site, error)
}

// Recommender produces media recommendations.
type Recommender interface {
	Recommend(ctx context.Context, source, mediaType string, limit int) ([]MediaItem, error)
}

// LibraryService queries the media library.
type LibraryService interface {
	Query(ctx context.Context, mediaType, title string) ([]LibraryItem, error)
}

// Messenger delivers notifications to users.
type Messenger interface {
	Send(ctx context.Context, note Notification) error
}

// Services bundles the domain collaborators the builtin tools delegate to.
// A nil field disables the tools that need it.
type Services struct {
	Media       MediaSearcher
	Torrents    TorrentSearcher
	Subscribes  SubscribeService
	Downloads   DownloadService
	Sites       SiteService
	Recommender Recommender
	Library     LibraryService
	Messenger   Messenger
}

// Register adds every builtin tool whose backing service is configured.
func Register(registry *gateway.Registry, services Services) error {
	type binding struct {
		enabled bool
		desc    gateway.ToolDescriptor
	}

	bindings := []binding{
		{services.Media != nil, searchMediaTool(services.Media)},
		{services.Subscribes != nil, addSubscribeTool(services.Subscribes)},
		{services.Torrents != nil, searchTorrentsTool(services.Torrents)},
		{services.Downloads != nil, addDownloadTool(services.Downloads)},
		{services.Subscribes != nil, querySubscribesTool(services.Subscribes)},
		{services.Downloads != nil, queryDownloadsTool(services.Downloads)},
		{services.Sites != nil, querySitesTool(services.Sites)},
		{services.Recommender != nil, getRecommendationsTool(services.Recommender)},
		{services.Library != nil, queryMediaLibraryTool(services.Library)},
		{services.Messenger != nil, sendMessageTool(services.Messenger)},
	}

	for _, b := range bindings {
		if !b.enabled {
			continue
		}
		if err := registry.Register(b.desc); err != nil {
			return fmt.Errorf("failed to register %s: %w", b.desc.Name, err)
		}
	}

	return nil
}

// explanationParam is common to every tool: agents state why they are
// calling it, which ends up in the audit trail via the arguments.
func explanationParam() gateway.Parameter {
	return gateway.Parameter{
		Name:        "explanation",
		Type:        "string",
		Description: "Clear explanation of why this tool is being used in the current context",
	}
}

func argString(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func argInt(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func argIntSlice(args map[string]interface{}, key string) []int {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if v, ok := item.(float64); ok {
			out = append(out, int(v))
		}
	}
	return out
}
