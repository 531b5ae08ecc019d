package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/halim/toolbridge/pkg/gateway"
)

const defaultRemoteTimeout = 30 * time.Second

// remoteCall is the body forwarded to a manifest endpoint.
type remoteCall struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	UserID    string                 `json:"user_id"`
	SessionID string                 `json:"session_id"`
}

// Loader turns manifest files into registered tools. It remembers which
// tools each file contributed so a file can be reloaded or removed later.
type Loader struct {
	registry  *gateway.Registry
	manifests *ManifestLoader
	client    *http.Client
	logger    zerolog.Logger

	mu      sync.Mutex
	byFile  map[string][]string
}

// NewLoader creates a loader that registers manifest tools into registry.
func NewLoader(registry *gateway.Registry, logger zerolog.Logger) *Loader {
	return &Loader{
		registry:  registry,
		manifests: NewManifestLoader(logger),
		client:    &http.Client{},
		logger:    logger.With().Str("component", "plugin-loader").Logger(),
		byFile:    make(map[string][]string),
	}
}

// LoadDir loads every *.json manifest in dir, in filename order. A manifest
// that fails to load is logged and skipped; it never takes down the rest.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read plugin directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := l.LoadFile(path); err != nil {
			l.logger.Error().Err(err).Str("path", path).Msg("Failed to load manifest")
		}
	}

	return nil
}

// LoadFile loads one manifest file and registers its tools. When the file
// was loaded before, its previous tools are deregistered first.
func (l *Loader) LoadFile(path string) error {
	manifest, err := l.manifests.LoadManifest(path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.unloadLocked(path)

	registered := make([]string, 0, len(manifest.Tools))
	for _, tool := range manifest.Tools {
		desc := l.descriptor(manifest, tool)
		if err := l.registry.Register(desc); err != nil {
			// Roll back what this file already registered.
			for _, name := range registered {
				_ = l.registry.Deregister(name)
			}
			return fmt.Errorf("failed to register tool %s: %w", tool.Name, err)
		}
		registered = append(registered, tool.Name)
	}

	l.byFile[path] = registered
	l.logger.Info().
		Str("manifest", manifest.Name).
		Str("path", path).
		Strs("tools", registered).
		Msg("Manifest loaded")

	return nil
}

// Unload deregisters every tool a manifest file contributed.
func (l *Loader) Unload(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unloadLocked(path)
}

func (l *Loader) unloadLocked(path string) {
	names, ok := l.byFile[path]
	if !ok {
		return
	}
	for _, name := range names {
		if err := l.registry.Deregister(name); err != nil {
			l.logger.Warn().Err(err).Str("tool", name).Msg("Failed to deregister tool")
		}
	}
	delete(l.byFile, path)
}

// Loaded returns the tool names contributed by a manifest file.
func (l *Loader) Loaded(path string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := l.byFile[path]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// descriptor builds a gateway descriptor whose handler forwards calls to the
// manifest endpoint.
func (l *Loader) descriptor(manifest *Manifest, tool ToolManifest) gateway.ToolDescriptor {
	params := make([]gateway.Parameter, 0, len(tool.Parameters))
	for _, p := range tool.Parameters {
		params = append(params, gateway.Parameter{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Enum:        p.Enum,
			Items:       p.Items,
			Default:     p.Default,
		})
	}

	timeout := defaultRemoteTimeout
	if manifest.TimeoutSeconds > 0 {
		timeout = time.Duration(manifest.TimeoutSeconds) * time.Second
	}
	endpoint := manifest.Endpoint
	headers := manifest.Headers
	toolName := tool.Name

	return gateway.ToolDescriptor{
		Name:        toolName,
		Description: tool.Description,
		Parameters:  params,
		Handler: func(ctx context.Context, args map[string]interface{}, userID, sessionID string) (interface{}, error) {
			return l.forward(ctx, endpoint, headers, timeout, remoteCall{
				ToolName:  toolName,
				Arguments: args,
				UserID:    userID,
				SessionID: sessionID,
			})
		},
	}
}

// forward posts a call to the manifest endpoint and returns its decoded JSON
// response.
func (l *Loader) forward(ctx context.Context, endpoint string, headers map[string]string, timeout time.Duration, call remoteCall) (interface{}, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("failed to encode remote call: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build remote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read remote response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var result interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not JSON; hand the text back as-is.
		return strings.TrimSpace(string(raw)), nil
	}
	return result, nil
}
