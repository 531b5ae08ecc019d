package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Println("=== Toolbridge Configuration Wizard ===")
	fmt.Println()

	cfg := DefaultConfig()
	validator := NewValidator()

	// Shared API key
	for {
		fmt.Print("API key callers must present (min 16 characters): ")
		key, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if err := validator.ValidateAPIKey(key); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		cfg.Auth.APIKey = key
		break
	}

	// Listen port
	for {
		fmt.Printf("Listen port [%d]: ", cfg.Server.Port)
		line, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}

		port, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("Error: port must be a number")
			continue
		}
		if err := validator.ValidatePort(port); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		cfg.Server.Port = port
		break
	}

	// Upstream server
	for {
		fmt.Print("Upstream media server URL (press Enter to skip): ")
		rawURL, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if rawURL == "" {
			break
		}

		if err := validator.ValidateUpstreamURL(rawURL); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		cfg.Upstream.URL = rawURL

		fmt.Print("Upstream API token (press Enter to skip): ")
		token, err := w.readLine()
		if err != nil {
			return nil, err
		}
		cfg.Upstream.Token = token
		break
	}

	// Plugins
	fmt.Print("Enable plugin manifests? [Y/n]: ")
	answer, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Plugins.Enabled = answer == "" || strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")

	fmt.Println()
	fmt.Println("Configuration complete.")
	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
