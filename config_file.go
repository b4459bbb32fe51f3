package cookiejwt

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads a configuration file on top of [DefaultConfig]. The
// format is chosen by extension: .toml, .yaml or .yml. The result is not
// validated; [Builder.Build] does that.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data, filepath.Ext(path))
}

// ParseConfig decodes data in the format named by ext (".toml", ".yaml" or
// ".yml") on top of [DefaultConfig].
func ParseConfig(data []byte, ext string) (Config, error) {
	cfg := defaultConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%w: decode toml: %w", ErrInvalidConfig, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidConfig, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}
	return cfg, nil
}

// Duration is a time.Duration that reads "90s"/"24h" strings or a bare
// number of seconds from configuration files.
type Duration time.Duration

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Seconds returns d truncated to whole seconds.
func (d Duration) Seconds() int64 { return int64(time.Duration(d) / time.Second) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// SameSite is an http.SameSite that reads "lax", "strict", "none" or
// "default" from configuration files.
type SameSite http.SameSite

func (s SameSite) MarshalText() ([]byte, error) {
	switch http.SameSite(s) {
	case http.SameSiteLaxMode:
		return []byte("lax"), nil
	case http.SameSiteStrictMode:
		return []byte("strict"), nil
	case http.SameSiteNoneMode:
		return []byte("none"), nil
	default:
		return []byte("default"), nil
	}
}

func (s *SameSite) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "default":
		*s = SameSite(http.SameSiteDefaultMode)
	case "lax":
		*s = SameSite(http.SameSiteLaxMode)
	case "strict":
		*s = SameSite(http.SameSiteStrictMode)
	case "none":
		*s = SameSite(http.SameSiteNoneMode)
	default:
		return fmt.Errorf("invalid same_site %q", string(text))
	}
	return nil
}
