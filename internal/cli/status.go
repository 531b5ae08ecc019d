package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/halim/toolbridge/internal/config"
)

var statusServerURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway status",
	Long:  `Query the health endpoint of a running gateway and print its status.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusServerURL, "server", "", "gateway base URL (default derived from config)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	base, _, err := serverTarget(statusServerURL)
	if err != nil {
		return err
	}

	resp, err := http.Get(base + "/health")
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: unreachable")
		return nil
	}
	defer resp.Body.Close()

	var health struct {
		Status    string  `json:"status"`
		Uptime    float64 `json:"uptime"`
		ToolCount int     `json:"toolCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", health.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "Uptime: %s\n", formatDuration(time.Duration(health.Uptime)*time.Second))
	fmt.Fprintf(cmd.OutOrStdout(), "Tools: %d\n", health.ToolCount)

	return nil
}

// serverTarget resolves the gateway base URL and API key from the flag and
// the config file.
func serverTarget(override string) (baseURL, apiKey string, err error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to load configuration: %w", err)
	}

	if override != "" {
		return override, cfg.Auth.APIKey, nil
	}

	host := cfg.Server.Host
	if host == "0.0.0.0" || host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port), cfg.Auth.APIKey, nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
