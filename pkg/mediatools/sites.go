package mediatools

import (
	"context"
	"fmt"
	"strings"

	"github.com/halim/toolbridge/pkg/gateway"
)

func querySitesTool(sites SiteService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "query_sites",
		Description: "List configured indexer sites. Useful for picking site ids to pass to search_torrents.",
		Parameters: []gateway.Parameter{
			{Name: "status", Type: "string", Description: "Site state filter", Default: "all", Enum: []string{"active", "inactive", "all"}},
			{Name: "name", Type: "string", Description: "Only sites whose name contains this text"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			all, err := sites.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to query sites: %w", err)
			}

			status := argString(args, "status", "all")
			name := strings.ToLower(argString(args, "name", ""))

			filtered := make([]Site, 0, len(all))
			for _, site := range all {
				if status == "active" && !site.Active {
					continue
				}
				if status == "inactive" && site.Active {
					continue
				}
				if name != "" && !strings.Contains(strings.ToLower(site.Name), name) {
					continue
				}
				filtered = append(filtered, site)
			}

			if len(filtered) == 0 {
				return "no sites matched", nil
			}
			return filtered, nil
		},
	}
}
