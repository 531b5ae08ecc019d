package mediatools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halim/toolbridge/pkg/gateway"
)

type stubServices struct {
	searchResults []MediaItem
	searchErr     error

	torrents []Torrent

	subs       []Subscription
	addSubReq  SubscribeRequest
	addSubErr  error
	tasks      []DownloadTask
	addDlReq   DownloadRequest
	sites      []Site
	recItems   []MediaItem
	recSource  string
	recLimit   int
	libItems   []LibraryItem
	sentNotes  []Notification
	messageErr error
}

func (s *stubServices) Search(ctx context.Context, title, year, mediaType string, season int) ([]MediaItem, error) {
	return s.searchResults, s.searchErr
}

func (s *stubServices) SearchTorrents(ctx context.Context, title string, sites []int) ([]Torrent, error) {
	return s.torrents, nil
}

func (s *stubServices) Add(ctx context.Context, req SubscribeRequest) (int64, error) {
	s.addSubReq = req
	return 42, s.addSubErr
}

func (s *stubServices) List(ctx context.Context) ([]Subscription, error) {
	return s.subs, nil
}

type stubDownloads struct{ s *stubServices }

func (d stubDownloads) Add(ctx context.Context, req DownloadRequest) (string, error) {
	d.s.addDlReq = req
	return "dl-1", nil
}

func (d stubDownloads) List(ctx context.Context, downloader, status string) ([]DownloadTask, error) {
	return d.s.tasks, nil
}

type stubSites struct{ s *stubServices }

func (x stubSites) List(ctx context.Context) ([]Site, error) { return x.s.sites, nil }

type stubRecommender struct{ s *stubServices }

func (r stubRecommender) Recommend(ctx context.Context, source, mediaType string, limit int) ([]MediaItem, error) {
	r.s.recSource = source
	r.s.recLimit = limit
	return r.s.recItems, nil
}

type stubLibrary struct{ s *stubServices }

func (l stubLibrary) Query(ctx context.Context, mediaType, title string) ([]LibraryItem, error) {
	return l.s.libItems, nil
}

type stubMessenger struct{ s *stubServices }

func (m stubMessenger) Send(ctx context.Context, note Notification) error {
	m.s.sentNotes = append(m.s.sentNotes, note)
	return m.s.messageErr
}

func fullServices(s *stubServices) Services {
	return Services{
		Media:       s,
		Torrents:    s,
		Subscribes:  s,
		Downloads:   stubDownloads{s},
		Sites:       stubSites{s},
		Recommender: stubRecommender{s},
		Library:     stubLibrary{s},
		Messenger:   stubMessenger{s},
	}
}

func registerAll(t *testing.T) (*gateway.Registry, *stubServices) {
	t.Helper()

	s := &stubServices{}
	registry := gateway.NewRegistry()
	require.NoError(t, Register(registry, fullServices(s)))
	return registry, s
}

func invoke(t *testing.T, registry *gateway.Registry, name string, args map[string]interface{}) (interface{}, error) {
	t.Helper()

	d, err := registry.Get(name)
	require.NoError(t, err)

	validated, err := gateway.ValidateArguments(d, args, false)
	require.NoError(t, err)

	return d.Handler(context.Background(), validated, "alice", "session-1")
}

func TestRegisterInstallsFullCatalogue(t *testing.T) {
	registry, _ := registerAll(t)

	names := make([]string, 0, registry.Len())
	for _, d := range registry.List() {
		names = append(names, d.Name)
	}

	assert.Equal(t, []string{
		"search_media",
		"add_subscribe",
		"search_torrents",
		"add_download",
		"query_subscribes",
		"query_downloads",
		"query_sites",
		"get_recommendations",
		"query_media_library",
		"send_message",
	}, names)
}

func TestRegisterSkipsToolsWithoutService(t *testing.T) {
	registry := gateway.NewRegistry()
	s := &stubServices{}

	require.NoError(t, Register(registry, Services{Subscribes: s}))

	assert.Equal(t, 2, registry.Len())
	_, err := registry.Get("add_subscribe")
	assert.NoError(t, err)
	_, err = registry.Get("search_media")
	assert.Error(t, err)
}

func TestAddSubscribePassesCallerAsUsername(t *testing.T) {
	registry, s := registerAll(t)

	result, err := invoke(t, registry, "add_subscribe", map[string]interface{}{
		"title":      "Dune",
		"year":       "2021",
		"media_type": "movie",
	})
	require.NoError(t, err)

	assert.Equal(t, "subscription 42 added: Dune (2021)", result)
	assert.Equal(t, "alice", s.addSubReq.Username)
	assert.Equal(t, "movie", s.addSubReq.MediaType)
}

func TestAddSubscribeWrapsServiceError(t *testing.T) {
	registry, s := registerAll(t)
	s.addSubErr = errors.New("duplicate subscription")

	_, err := invoke(t, registry, "add_subscribe", map[string]interface{}{
		"title":      "Dune",
		"year":       "2021",
		"media_type": "movie",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate subscription")
}

func TestQuerySubscribesFilters(t *testing.T) {
	registry, s := registerAll(t)
	s.subs = []Subscription{
		{ID: 1, Title: "Dune", Type: "movie", State: "R"},
		{ID: 2, Title: "Severance", Type: "tv", State: "R"},
		{ID: 3, Title: "Foundation", Type: "tv", State: "P"},
	}

	tests := []struct {
		name string
		args map[string]interface{}
		want []int64
	}{
		{"no filter", map[string]interface{}{}, []int64{1, 2, 3}},
		{"running only", map[string]interface{}{"status": "R"}, []int64{1, 2}},
		{"paused tv", map[string]interface{}{"status": "P", "media_type": "tv"}, []int64{3}},
		{"movies", map[string]interface{}{"media_type": "movie"}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := invoke(t, registry, "query_subscribes", tt.args)
			require.NoError(t, err)

			subs := result.([]Subscription)
			ids := make([]int64, 0, len(subs))
			for _, sub := range subs {
				ids = append(ids, sub.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQuerySubscribesEmptyResultIsMessage(t *testing.T) {
	registry, _ := registerAll(t)

	result, err := invoke(t, registry, "query_subscribes", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "no subscriptions matched", result)
}

func TestSearchMediaEmptyResultIsMessage(t *testing.T) {
	registry, _ := registerAll(t)

	result, err := invoke(t, registry, "search_media", map[string]interface{}{
		"title": "Nonexistent",
	})
	require.NoError(t, err)
	assert.Equal(t, `no media found for "Nonexistent"`, result)
}

func TestSearchMediaReturnsItems(t *testing.T) {
	registry, s := registerAll(t)
	s.searchResults = []MediaItem{{Title: "Dune", Year: "2021", Type: "movie"}}

	result, err := invoke(t, registry, "search_media", map[string]interface{}{
		"title": "Dune",
	})
	require.NoError(t, err)
	assert.Equal(t, s.searchResults, result)
}

func TestAddDownloadMapsArguments(t *testing.T) {
	registry, s := registerAll(t)

	result, err := invoke(t, registry, "add_download", map[string]interface{}{
		"torrent_title": "Dune.2021.2160p",
		"torrent_url":   "magnet:?xt=urn:btih:abc",
		"save_path":     "/media/movies",
	})
	require.NoError(t, err)

	assert.Equal(t, "download dl-1 added: Dune.2021.2160p", result)
	assert.Equal(t, "magnet:?xt=urn:btih:abc", s.addDlReq.TorrentURL)
	assert.Equal(t, "/media/movies", s.addDlReq.SavePath)
	assert.Equal(t, "alice", s.addDlReq.Username)
}

func TestQuerySitesFilters(t *testing.T) {
	registry, s := registerAll(t)
	s.sites = []Site{
		{ID: 1, Name: "AlphaTracker", Active: true},
		{ID: 2, Name: "BetaBits", Active: false},
		{ID: 3, Name: "AlphaPrime", Active: true},
	}

	result, err := invoke(t, registry, "query_sites", map[string]interface{}{
		"status": "active",
		"name":   "alpha",
	})
	require.NoError(t, err)

	sites := result.([]Site)
	require.Len(t, sites, 2)
	assert.Equal(t, 1, sites[0].ID)
	assert.Equal(t, 3, sites[1].ID)
}

func TestGetRecommendationsDefaults(t *testing.T) {
	registry, s := registerAll(t)
	s.recItems = []MediaItem{{Title: "Dune"}}

	_, err := invoke(t, registry, "get_recommendations", map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "tmdb_trending", s.recSource)
	assert.Equal(t, 20, s.recLimit)
}

func TestSendMessageUsesSeverityTitle(t *testing.T) {
	registry, s := registerAll(t)

	result, err := invoke(t, registry, "send_message", map[string]interface{}{
		"message":      "Download finished",
		"message_type": "success",
	})
	require.NoError(t, err)

	assert.Equal(t, "message sent", result)
	require.Len(t, s.sentNotes, 1)
	assert.Equal(t, "Done", s.sentNotes[0].Title)
	assert.Equal(t, "alice", s.sentNotes[0].UserID)
}

func TestSearchTorrentsAcceptsSiteIDs(t *testing.T) {
	registry, s := registerAll(t)
	s.torrents = []Torrent{{Title: "Dune.2021", Site: "AlphaTracker", Seeders: 12}}

	result, err := invoke(t, registry, "search_torrents", map[string]interface{}{
		"title": "Dune",
		"sites": []interface{}{float64(1), float64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, s.torrents, result)
}

func TestQueryMediaLibraryEmptyResultIsMessage(t *testing.T) {
	registry, _ := registerAll(t)

	result, err := invoke(t, registry, "query_media_library", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "no library items matched", result)
}
