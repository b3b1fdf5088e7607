package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pipe01/xmltok/internal/printer"
	"github.com/pipe01/xmltok/lexer"
	"golang.org/x/exp/slices"
)

const defaultConfigPath = "xmltok.toml"

// Config holds the settings that can come from a TOML file. Flags given on the
// command line take precedence.
type Config struct {
	Format    string `toml:"format"`
	Color     string `toml:"color"`
	Width     int    `toml:"width"`
	Jobs      int    `toml:"jobs"`
	Verbosity int    `toml:"verbosity"`
	Allocator string `toml:"allocator"`
}

func defaultConfig() Config {
	return Config{
		Format:    string(printer.FormatText),
		Color:     "auto",
		Verbosity: 0,
		Allocator: "heap",
	}
}

// loadConfig decodes path over the defaults. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("decode %q: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q in %q", undecoded[0].String(), path)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(printer.Formats, c.Format) {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	if !slices.Contains([]string{"auto", "on", "off"}, c.Color) {
		return fmt.Errorf("invalid color mode %q", c.Color)
	}
	if c.Width < 0 {
		return fmt.Errorf("invalid width %d", c.Width)
	}
	if _, err := c.NewAllocator(); err != nil {
		return err
	}

	return nil
}

func (c *Config) NewAllocator() (lexer.Allocator, error) {
	switch c.Allocator {
	case "heap", "":
		return lexer.Heap, nil
	case "pool":
		return lexer.NewPool(), nil
	}

	return nil, fmt.Errorf("invalid allocator %q", c.Allocator)
}

func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Color {
	case "on":
		return true
	case "off":
		return false
	}

	return isTerminal && os.Getenv("NO_COLOR") == ""
}
