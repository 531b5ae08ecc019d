package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

func searchMediaTool(media MediaSearcher) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "search_media",
		Description: "Search for movie or TV show information by title. Returns matching media with metadata such as year, type and TMDB id.",
		Parameters: []gateway.Parameter{
			{Name: "title", Type: "string", Description: "Media title to search for", Required: true},
			{Name: "year", Type: "string", Description: "Release year to narrow the search"},
			{Name: "media_type", Type: "string", Description: "Restrict results to one media kind", Enum: []string{"movie", "tv"}},
			{Name: "season", Type: "integer", Description: "Season number for TV shows"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			title := argString(args, "title", "")
			items, err := media.Search(ctx, title, argString(args, "year", ""), argString(args, "media_type", ""), argInt(args, "season"))
			if err != nil {
				return nil, fmt.Errorf("failed to search media: %w", err)
			}
			if len(items) == 0 {
				return fmt.Sprintf("no media found for %q", title), nil
			}
			return items, nil
		},
	}
}

func searchTorrentsTool(torrents TorrentSearcher) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "search_torrents",
		Description: "Search configured indexer sites for torrent resources matching a media title.",
		Parameters: []gateway.Parameter{
			{Name: "title", Type: "string", Description: "Media title to search for", Required: true},
			{Name: "year", Type: "string", Description: "Release year to narrow the search"},
			{Name: "media_type", Type: "string", Description: "Restrict results to one media kind", Enum: []string{"movie", "tv"}},
			{Name: "season", Type: "integer", Description: "Season number for TV shows"},
			{Name: "sites", Type: "array", Items: "integer", Description: "Site ids to search; all active sites when omitted"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			title := argString(args, "title", "")
			results, err := torrents.SearchTorrents(ctx, title, argIntSlice(args, "sites"))
			if err != nil {
				return nil, fmt.Errorf("failed to search torrents: %w", err)
			}
			if len(results) == 0 {
				return fmt.Sprintf("no torrents found for %q", title), nil
			}
			return results, nil
		},
	}
}

func getRecommendationsTool(recommender Recommender) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "get_recommendations",
		Description: "Get trending or popular media recommendations from a discovery source.",
		Parameters: []gateway.Parameter{
			{Name: "source", Type: "string", Description: "Discovery source to pull from", Default: "tmdb_trending", Enum: []string{"tmdb_trending", "tmdb_movies", "tmdb_tvs", "douban_movie_hot", "douban_tv_hot", "bangumi_calendar"}},
			{Name: "media_type", Type: "string", Description: "Restrict results to one media kind", Default: "all", Enum: []string{"movie", "tv", "all"}},
			{Name: "limit", Type: "integer", Description: "Maximum number of items to return", Default: 20},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			limit := argInt(args, "limit")
			if limit <= 0 {
				limit = 20
			}
			items, err := recommender.Recommend(ctx, argString(args, "source", "tmdb_trending"), argString(args, "media_type", "all"), limit)
			if err != nil {
				return nil, fmt.Errorf("failed to get recommendations: %w", err)
			}
			return items, nil
		},
	}
}
