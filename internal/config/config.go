package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/10jschen/matterhorn/internal/app"
	"github.com/pelletier/go-toml/v2"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// fileConfig is the TOML config file shape. Flags and environment
// variables override anything set here.
type fileConfig struct {
	Server   string `toml:"server"`
	Team     string `toml:"team"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	History  string `toml:"history"`
	LogFile  string `toml:"log_file"`
	Trace    bool   `toml:"trace"`
}

const (
	envConfigPath = "MATTERHORN_CONFIG"
	envServer     = "MATTERHORN_SERVER"
	envTeam       = "MATTERHORN_TEAM"
	envUsername   = "MATTERHORN_USER"
	envPassword   = "MATTERHORN_PASSWORD"
	envHistory    = "MATTERHORN_HISTORY"
	envTrace      = "MATTERHORN_TRACE"
	envLogFile    = "MATTERHORN_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("matterhorn", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	configPath := fs.String("config", envOrDefault(env, envConfigPath, defaultConfigPath()), "path to the TOML config file")
	server := fs.String("server", envOrDefault(env, envServer, ""), "chat server base URL, e.g. https://chat.example.com")
	team := fs.String("team", envOrDefault(env, envTeam, ""), "team name to log into")
	username := fs.String("user", envOrDefault(env, envUsername, ""), "login username")
	password := fs.String("pass", envOrDefault(env, envPassword, ""), "login password (prefer the config file or environment)")
	history := fs.String("history", envOrDefault(env, envHistory, ""), "path to the input history file")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	file, err := loadFile(*configPath)
	if err != nil {
		return Config{}, err
	}
	if *server == "" {
		*server = file.Server
	}
	if *team == "" {
		*team = file.Team
	}
	if *username == "" {
		*username = file.Username
	}
	if *password == "" {
		*password = file.Password
	}
	if *history == "" {
		*history = file.History
	}
	if *logFile == "" {
		*logFile = file.LogFile
	}
	if !*trace {
		*trace = file.Trace
	}
	if *history == "" {
		*history = defaultHistoryPath()
	}

	cfg := Config{
		App: app.Config{
			ServerURL:   strings.TrimRight(*server, "/"),
			Team:        *team,
			Username:    *username,
			Password:    *password,
			HistoryPath: *history,
			DumpPath:    filepath.Join(os.TempDir(), "matterhorn-state-dump.json"),
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"config":  *configPath,
			"server":  *server,
			"team":    *team,
			"user":    *username,
			"history": *history,
			"trace":   strconv.FormatBool(*trace),
			"logFile": *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// loadFile reads the TOML config file. A missing file at the default path
// is not an error; an explicitly configured file must exist.
func loadFile(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigPath() {
			return file, nil
		}
		return file, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matterhorn", "config.toml")
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matterhorn", "history.json")
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if cfg.App.ServerURL == "" {
		return fmt.Errorf("no server configured (use -server, %s, or the config file)", envServer)
	}
	if !strings.HasPrefix(cfg.App.ServerURL, "http://") && !strings.HasPrefix(cfg.App.ServerURL, "https://") {
		return fmt.Errorf("server URL %q must start with http:// or https://", cfg.App.ServerURL)
	}
	if cfg.App.Team == "" {
		return fmt.Errorf("no team configured (use -team, %s, or the config file)", envTeam)
	}
	if cfg.App.Username == "" {
		return fmt.Errorf("no username configured (use -user, %s, or the config file)", envUsername)
	}
	return nil
}
