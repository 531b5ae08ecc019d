package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var toolsServerURL string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools of a running gateway",
	Long:  `Fetch the tool catalogue from a running gateway and print each tool with its description.`,
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().StringVar(&toolsServerURL, "server", "", "gateway base URL (default derived from config)")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	base, apiKey, err := serverTarget(toolsServerURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodGet, base+"/tools", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, errBody.Detail)
	}

	var tools []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return fmt.Errorf("failed to decode tool list: %w", err)
	}

	if len(tools) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tools registered.")
		return nil
	}

	for _, tool := range tools {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", tool.Name, tool.Description)
	}
	return nil
}
