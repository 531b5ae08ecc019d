package mediatools

import (
	"context"
	"fmt"

	"github.com/halim/toolbridge/pkg/gateway"
)

func addDownloadTool(downloads DownloadService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "add_download",
		Description: "Send a torrent to a downloader. The torrent URL usually comes from a prior search_torrents call.",
		Parameters: []gateway.Parameter{
			{Name: "torrent_title", Type: "string", Description: "Torrent title, used for naming the task", Required: true},
			{Name: "torrent_url", Type: "string", Description: "Torrent or magnet URL", Required: true},
			{Name: "downloader", Type: "string", Description: "Target downloader name; the default downloader when omitted"},
			{Name: "save_path", Type: "string", Description: "Directory the downloader saves into"},
			{Name: "labels", Type: "string", Description: "Comma separated labels attached to the task"},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			req := DownloadRequest{
				TorrentTitle: argString(args, "torrent_title", ""),
				TorrentURL:   argString(args, "torrent_url", ""),
				Downloader:   argString(args, "downloader", ""),
				SavePath:     argString(args, "save_path", ""),
				Labels:       argString(args, "labels", ""),
				Username:     userID,
			}
			id, err := downloads.Add(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("failed to add download: %w", err)
			}
			return fmt.Sprintf("download %s added: %s", id, req.TorrentTitle), nil
		},
	}
}

func queryDownloadsTool(downloads DownloadService) gateway.ToolDescriptor {
	return gateway.ToolDescriptor{
		Name:        "query_downloads",
		Description: "List download tasks and their progress, optionally filtered by downloader or state.",
		Parameters: []gateway.Parameter{
			{Name: "downloader", Type: "string", Description: "Only tasks on this downloader"},
			{Name: "status", Type: "string", Description: "Task state filter", Default: "all", Enum: []string{"downloading", "paused", "completed", "all"}},
			explanationParam(),
		},
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			tasks, err := downloads.List(ctx, argString(args, "downloader", ""), argString(args, "status", "all"))
			if err != nil {
				return nil, fmt.Errorf("failed to query downloads: %w", err)
			}
			if len(tasks) == 0 {
				return "no download tasks matched", nil
			}
			return tasks, nil
		},
	}
}
