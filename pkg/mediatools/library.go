package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

func queryMediaLibraryTool(library LibraryService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "query_media_library",
		Description: "Query what already exists in the media library, to avoid subscribing to or downloading duplicates.",
		Parameters: []gateway.Parameter{
			{Name: "media_type", Type: "string", Description: "Restrict results to one media kind", Default: "all", Enum: []string{"movie", "tv", "all"}},
			{Name: "title", Type: "string", Description: "Only items whose title contains this text"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			items, err := library.Query(ctx, argString(args, "media_type", "all"), argString(args, "title", ""))
			if err != nil {
				return nil, fmt.Errorf("failed to query media library: %w", err)
			}
			if len(items) == 0 {
				return "no library items matched", nil
			}
			return items, nil
		},
	}
}
