package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string `yaml:"app_env"   env:"APP_ENV"   env-default:"prod"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	OpsAddr  string `yaml:"ops_addr"  env:"OPS_ADDR"  env-default:":9100"`

	// MySQLDSN empty means the in-memory store.
	MySQLDSN string `yaml:"mysql_dsn" env:"MYSQL_DSN"`
	Migrate  bool   `yaml:"migrate"   env:"MIGRATE"   env-default:"false"`

	// RedisAddr empty disables the read cache.
	RedisAddr string        `yaml:"redis_addr"     env:"REDIS_ADDR"`
	RedisPass string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB   int           `yaml:"redis_db"       env:"REDIS_DB"       env-default:"0"`
	CacheTTL  time.Duration `yaml:"cache_ttl"      env:"CACHE_TTL"      env-default:"15m"`

	// ReviewableTypes declares types and roles, e.g. "Article=reviews,endorsements;Photo".
	ReviewableTypes string `yaml:"reviewable_types" env:"REVIEWABLE_TYPES" env-default:"Article"`

	ImportFile    string `yaml:"import_file"    env:"IMPORT_FILE"`
	ImportWorkers int    `yaml:"import_workers" env:"IMPORT_WORKERS" env-default:"8"`
	ImportRPS     int    `yaml:"import_rps"     env:"IMPORT_RPS"     env-default:"200"`
}

// Load reads CONFIG_PATH (YAML) when set, then environment variables, then
// the env-default tags.
func Load() (Config, error) {
	var c Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &c); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	if c.CacheTTL < time.Second {
		return Config{}, fmt.Errorf("config: CACHE_TTL must be at least 1s, got %s", c.CacheTTL)
	}
	if c.ImportWorkers <= 0 {
		c.ImportWorkers = 1
	}
	if c.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty, reviews are kept in memory")
	}
	return c, nil
}

// TypeDecl is one entry of ReviewableTypes.
type TypeDecl struct {
	Name  string
	Roles []string
}

// ParseTypes parses "Article=reviews,endorsements;Photo". A type without
// roles gets none here; the registry applies the default role.
func ParseTypes(s string) ([]TypeDecl, error) {
	var out []TypeDecl
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, roles, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("config: reviewable type without a name in %q", part)
		}
		d := TypeDecl{Name: name}
		for _, r := range strings.Split(roles, ",") {
			if r = strings.TrimSpace(r); r != "" {
				d.Roles = append(d.Roles, r)
			}
		}
		out = append(out, d)
	}
	return out, nil
}
