package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/hekate/internal/constants"
)

// GoogleClientIDs are the OAuth client ids the API accepts id tokens for.
type GoogleClientIDs struct {
	Web     string `yaml:"web"`
	IOS     string `yaml:"ios"`
	Android string `yaml:"android"`
}

// Config captures the client configuration. Values come from defaults, the
// optional YAML file, the environment and finally CLI flags, in that order.
type Config struct {
	APIURL         string          `yaml:"api_url"`
	Google         GoogleClientIDs `yaml:"google"`
	ConfigDir      string          `yaml:"-"`
	CachePath      string          `yaml:"cache_path"`
	CacheTTL       time.Duration   `yaml:"cache_ttl"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	Debug          bool            `yaml:"debug"`
}

var (
	// ErrMissingAPIURL is returned when no API base URL was configured anywhere.
	ErrMissingAPIURL = errors.New("API base URL is not configured")

	userHomeDirFunc = os.UserHomeDir
	getenvFunc      = os.Getenv
)

// Default returns the configuration used when nothing else is set.
func Default(configDir string) Config {
	return Config{
		ConfigDir:      configDir,
		CachePath:      filepath.Join(configDir, constants.DefaultCacheFile),
		CacheTTL:       constants.DefaultCacheTTL,
		RequestTimeout: constants.DefaultRequestTimeout,
	}
}

// Load resolves the configuration rooted at configDir ("" for the default
// ~/.config/hekate). Missing required values and invalid entries are
// reported together.
func Load(configDir string) (Config, error) {
	dir, err := ExpandHome(configDir)
	if err != nil {
		return Config{}, err
	}
	if dir == "" {
		if dir, err = ExpandHome(constants.DefaultConfigDir); err != nil {
			return Config{}, err
		}
	}

	cfg := Default(dir)
	if err := cfg.mergeFile(filepath.Join(dir, constants.ConfigFileName)); err != nil {
		return Config{}, err
	}

	invalid := cfg.mergeEnv()
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	if cfg.CachePath, err = ExpandHome(cfg.CachePath); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that can only be judged once flags are applied.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%w: set %s or %s", ErrMissingAPIURL, constants.EnvAPIURL, constants.EnvExpoAPIURL)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("API URL %q must start with http:// or https://", c.APIURL)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fileCfg.APIURL != "" {
		c.APIURL = fileCfg.APIURL
	}
	if fileCfg.Google.Web != "" {
		c.Google.Web = fileCfg.Google.Web
	}
	if fileCfg.Google.IOS != "" {
		c.Google.IOS = fileCfg.Google.IOS
	}
	if fileCfg.Google.Android != "" {
		c.Google.Android = fileCfg.Google.Android
	}
	if fileCfg.CachePath != "" {
		c.CachePath = fileCfg.CachePath
	}
	if fileCfg.CacheTTL > 0 {
		c.CacheTTL = fileCfg.CacheTTL
	}
	if fileCfg.RequestTimeout > 0 {
		c.RequestTimeout = fileCfg.RequestTimeout
	}
	c.Debug = c.Debug || fileCfg.Debug
	return nil
}

func (c *Config) mergeEnv() []string {
	invalid := make([]string, 0, 3)

	if v := firstEnv(constants.EnvAPIURL, constants.EnvExpoAPIURL); v != "" {
		c.APIURL = v
	}
	if v := firstEnv(constants.EnvGoogleWebClientID, constants.EnvExpoGoogleWebID); v != "" {
		c.Google.Web = v
	}
	if v := firstEnv(constants.EnvGoogleIOSClientID, constants.EnvExpoGoogleIOSID); v != "" {
		c.Google.IOS = v
	}
	if v := firstEnv(constants.EnvGoogleAndroidClientID, constants.EnvExpoGoogleAndroidID); v != "" {
		c.Google.Android = v
	}
	if v := firstEnv(constants.EnvCachePath); v != "" {
		c.CachePath = v
	}
	if v := firstEnv(constants.EnvCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, constants.EnvCacheTTL)
		} else {
			c.CacheTTL = ttl
		}
	}
	if v := firstEnv(constants.EnvRequestTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, constants.EnvRequestTimeout)
		} else {
			c.RequestTimeout = timeout
		}
	}
	if v := firstEnv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, constants.EnvDebug)
		} else {
			c.Debug = debug
		}
	}
	return invalid
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(getenvFunc(name)); v != "" {
			return v
		}
	}
	return ""
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := userHomeDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
