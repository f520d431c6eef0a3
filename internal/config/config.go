// Package config holds the flag-based configuration for the chessmind
// binaries.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Server configures the HTTP facade.
type Server struct {
	Addr      string
	StaticDir string
	Debug     bool
}

// DefaultServer returns the server defaults.
func DefaultServer() Server {
	return Server{
		Addr:      ":8080",
		StaticDir: "static",
	}
}

// RegisterFlags binds the server fields to the flag set.
func (c *Server) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address for the HTTP server")
	fs.StringVar(&c.StaticDir, "static", c.StaticDir, "directory served for non-engine paths")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log request and response bodies")
}

// Bot configures the Lichess bot.
type Bot struct {
	TokenPath  string
	BaseURL    string
	StorageDir string
	Debug      bool

	token string
}

// DefaultBot returns the bot defaults. The storage directory default is
// resolved by the caller so this package stays free of storage imports.
func DefaultBot() Bot {
	return Bot{
		BaseURL: "https://lichess.org",
	}
}

// RegisterFlags binds the bot fields to the flag set.
func (c *Bot) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.TokenPath, "token-file", c.TokenPath, "file holding the Lichess API token")
	fs.StringVar(&c.BaseURL, "lichess-url", c.BaseURL, "Lichess API base URL")
	fs.StringVar(&c.StorageDir, "storage", c.StorageDir, "directory for the game database")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log raw stream events")
}

// Token returns the Lichess API token, reading the token file on first use
// and falling back to the LICHESS_TOKEN environment variable.
func (c *Bot) Token() (string, error) {
	if c.token != "" {
		return c.token, nil
	}

	if c.TokenPath != "" {
		data, err := os.ReadFile(c.TokenPath)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		c.token = strings.TrimSpace(string(data))
		if c.token == "" {
			return "", fmt.Errorf("token file %s is empty", c.TokenPath)
		}
		return c.token, nil
	}

	c.token = strings.TrimSpace(os.Getenv("LICHESS_TOKEN"))
	if c.token == "" {
		return "", fmt.Errorf("no token: set -token-file or LICHESS_TOKEN")
	}
	return c.token, nil
}
