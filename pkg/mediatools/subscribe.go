package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

func addSubscribeTool(subscribes SubscribeService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "add_subscribe",
		Description: "Create a subscription so the server keeps looking for a media title until it is downloaded.",
		Parameters: []gateway.Parameter{
			{Name: "title", Type: "string", Description: "Media title", Required: true},
			{Name: "year", Type: "string", Description: "Release year", Required: true},
			{Name: "media_type", Type: "string", Description: "Kind of media", Required: true, Enum: []string{"movie", "tv"}},
			{Name: "season", Type: "integer", Description: "Season number for TV shows"},
			{Name: "tmdb_id", Type: "integer", Description: "TMDB id when already known; skips title matching"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			req := SubscribeRequest{
				Title:     argString(args, "title", ""),
				Year:      argString(args, "year", ""),
				MediaType: argString(args, "media_type", ""),
				Season:    argInt(args, "season"),
				TMDBID:    int64(argInt(args, "tmdb_id")),
				Username:  userID,
			}
			id, err := subscribes.Add(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("failed to add subscription: %w", err)
			}
			return fmt.Sprintf("subscription %d added: %s (%s)", id, req.Title, req.Year), nil
		},
	}
}

func querySubscribesTool(subscribes SubscribeService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "query_subscribes",
		Description: "List current media subscriptions, optionally filtered by state or media kind.",
		Parameters: []gateway.Parameter{
			{Name: "status", Type: "string", Description: "Subscription state filter: R running, P paused", Default: "all", Enum: []string{"R", "P", "all"}},
			{Name: "media_type", Type: "string", Description: "Restrict results to one media kind", Default: "all", Enum: []string{"movie", "tv", "all"}},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			subs, err := subscribes.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to query subscriptions: %w", err)
			}

			status := argString(args, "status", "all")
			mediaType := argString(args, "media_type", "all")

			filtered := make([]Subscription, 0, len(subs))
			for _, sub := range subs {
				if status != "all" && sub.State != status {
					continue
				}
				if mediaType != "all" && sub.Type != mediaType {
					continue
				}
				filtered = append(filtered, sub)
			}

			if len(filtered) == 0 {
				return "no subscriptions matched", nil
			}
			return filtered, nil
		},
	}
}
