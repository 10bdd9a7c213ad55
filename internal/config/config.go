package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Config struct {
	FilePath  string
	UseStdin  bool
	Follow    bool
	MaxBuffer int
	Mode      string // all|network
	Theme     Theme

	// Non-interactive export
	ExportFormat string // text|html
	ExportOut    string
	Compress     bool

	// AI explain
	Offline          bool
	OpenAIModel      string
	OpenAIBase       string
	OpenAITimeoutSec int

	ShowVersion bool

	// Internal
	IsPipedStdin bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Detect if stdin is piped
	fi, _ := os.Stdin.Stat()
	cfg.IsPipedStdin = (fi.Mode() & os.ModeCharDevice) == 0

	fs := flag.NewFlagSet("pulse", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.FilePath, "file", "", "path to an entity record file (NDJSON)")
	fs.BoolVar(&cfg.Follow, "follow", false, "follow file (tail -f)")
	fs.BoolVar(&cfg.UseStdin, "stdin", false, "read from stdin (default: auto if piped)")
	fs.IntVar(&cfg.MaxBuffer, "max-buffer", 100000, "in-memory entity buffer size (min 10000)")
	fs.StringVar(&cfg.Mode, "mode", "all", "console mode: all|network")
	theme := string(ThemeDark)
	fs.StringVar(&theme, "theme", string(ThemeDark), "theme: dark|light")
	fs.StringVar(&cfg.ExportFormat, "export", "", "export the filtered view without the TUI: text|html")
	fs.StringVar(&cfg.ExportOut, "out", "", "output path for export")
	fs.BoolVar(&cfg.Compress, "compress", false, "gzip export payloads")
	fs.BoolVar(&cfg.Offline, "offline", false, "disable OpenAI explain and work offline only")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("PULSE_OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model override")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("PULSE_OPENAI_BASE_URL", ""), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("PULSE_OPENAI_TIMEOUT_SEC", 60), "OpenAI request timeout in seconds")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}
	cfg.Theme = Theme(theme)

	if cfg.Mode != "all" && cfg.Mode != "network" {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if cfg.ExportFormat != "" {
		if cfg.ExportFormat != "text" && cfg.ExportFormat != "html" {
			return nil, fmt.Errorf("unknown export format %q", cfg.ExportFormat)
		}
		if cfg.ExportOut == "" {
			return nil, errors.New("--export requires --out path")
		}
		if cfg.Follow {
			return nil, errors.New("--export reads the input to EOF and cannot --follow")
		}
		if cfg.FilePath == "" && !cfg.UseStdin && !cfg.IsPipedStdin {
			return nil, errors.New("--export requires --file or piped stdin")
		}
	}

	// Determine input source defaults
	if cfg.UseStdin || (cfg.IsPipedStdin && cfg.FilePath == "") {
		cfg.UseStdin = true
	}

	if cfg.MaxBuffer < 10000 {
		cfg.MaxBuffer = 10000
	}

	return cfg, nil
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("file=%s stdin=%v follow=%v mode=%s theme=%s offline=%v", c.FilePath, c.UseStdin, c.Follow, c.Mode, c.Theme, c.Offline)
}
