package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds application configuration
type Config struct {
	SourcePath    string
	Port          int
	PlayerCommand string
	PlayerArgs    []string
	MixerCommand  string
	MixerControl  string
	Extensions    []string
	ProbeWorkers  int
	Password      string
	CORSOrigins   []string
	Verbose       bool
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		SourcePath:    "/media/max/Windows/music",
		Port:          3003,
		PlayerCommand: "mplayer",
		PlayerArgs:    []string{},
		MixerCommand:  "amixer",
		MixerControl:  "Master",
		Extensions:    []string{".mp3"},
		ProbeWorkers:  8,
		CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// LoadDotEnv loads variables from a .env file when one exists
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load applies environment variables and then command-line flags over the defaults
func Load(args []string) (*Config, error) {
	cfg := Default()

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.applyFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("JUKEBOX_SOURCE_PATH"); v != "" {
		c.SourcePath = v
	}
	if v := getenv("JUKEBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JUKEBOX_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := getenv("JUKEBOX_PLAYER"); v != "" {
		c.PlayerCommand = v
	}
	if v := getenv("JUKEBOX_PLAYER_ARGS"); v != "" {
		c.PlayerArgs = strings.Fields(v)
	}
	if v := getenv("JUKEBOX_MIXER"); v != "" {
		c.MixerCommand = v
	}
	if v := getenv("JUKEBOX_MIXER_CONTROL"); v != "" {
		c.MixerControl = v
	}
	if v := getenv("JUKEBOX_EXTENSIONS"); v != "" {
		c.Extensions = normalizeExtensions(strings.Split(v, ","))
	}
	if v := getenv("JUKEBOX_PROBE_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JUKEBOX_PROBE_WORKERS %q: %w", v, err)
		}
		c.ProbeWorkers = workers
	}
	if v := getenv("JUKEBOX_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) applyFlags(args []string) error {
	fs := pflag.NewFlagSet("jukebox", pflag.ContinueOnError)
	fs.StringVar(&c.SourcePath, "source-path", c.SourcePath, "music directory to scan")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP port")
	fs.StringVar(&c.PlayerCommand, "player", c.PlayerCommand, "audio player binary")
	fs.StringVar(&c.MixerControl, "mixer-control", c.MixerControl, "mixer control passed to the mixer binary")
	fs.IntVar(&c.ProbeWorkers, "workers", c.ProbeWorkers, "concurrent metadata probes")
	fs.StringVar(&c.Password, "password", c.Password, "require HTTP basic auth with this password")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

// Validate checks the values that would otherwise fail late
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourcePath) == "" {
		return errors.New("source path is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.PlayerCommand == "" {
		return errors.New("player command is required")
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one audio extension is required")
	}
	if c.ProbeWorkers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.ProbeWorkers)
	}
	return nil
}

// normalizeExtensions lowercases and dot-prefixes extensions, dropping blanks
func normalizeExtensions(values []string) []string {
	extensions := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		extensions = append(extensions, v)
	}
	return extensions
}
