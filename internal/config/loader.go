// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `LINCMS_`, where `__` maps to "."
     (e.g., `LINCMS_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<path>#<key>` are then swapped for the
secret they name.  The merged tree is unmarshalled, defaulted, validated,
and cached in an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans for root discovery, YAML read, and each resolved secret.
  • ERROR spans for every failure before it is returned.
  • Logs use the global sugared logger (`zap.S()`), which is a no-op until
    main installs the file logger.

Notes
-----
  • `rootDir()` climbs from the cwd until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/vault"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "LINCMS_"

var current atomic.Pointer[Config]

// Resolver turns a `vault:` reference into its secret.
type Resolver interface {
	Resolve(ctx context.Context, value string) (string, error)
}

// newResolver is only called when a reference is actually present, so
// deployments without Vault never need VAULT_ADDR.
var newResolver = func(ctx context.Context) (Resolver, error) {
	return vault.New(ctx, zap.S())
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves LINCMS_ROOT or climbs directories until conf/global.yaml
// is found.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.defaults()
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"log_level", cfg.Log.Level,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets replaces every `vault:` string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf) error {
	var r Resolver
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !vault.IsRef(s) {
			continue
		}
		if r == nil {
			var err error
			if r, err = newResolver(ctx); err != nil {
				return fmt.Errorf("vault client: %w", err)
			}
		}
		secret, err := r.Resolve(ctx, s)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last loaded Config, or nil before Load.
func Get() *Config { return current.Load() }
