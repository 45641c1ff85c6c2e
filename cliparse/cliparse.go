package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/danielhkuo/weighted-voting/auth"
)

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	AdminAddress      common.Address
	RequireSignatures bool
	SignatureMaxAge   time.Duration
	LogLevel          string
	CORSOrigins       []string
}

// env variable for each config key
var envNames = map[string]string{
	"port":               "PORT",
	"database-url":       "DATABASE_URL",
	"database-type":      "DATABASE_TYPE",
	"admin":              "ADMIN_ADDRESS",
	"require-signatures": "REQUIRE_SIGNATURES",
	"signature-max-age":  "SIGNATURE_MAX_AGE",
	"log-level":          "LOG_LEVEL",
	"cors-origins":       "CORS_ORIGINS",
	"env-file":           "ENV_FILE",
}

// NewFlagSet declares every configuration flag.
func NewFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("weighted-voting", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntP("port", "p", 3318, "Server port")
	flags.StringP("database-url", "d", "", "Database URL")
	flags.StringP("database-type", "t", "sqlite", "Database type (sqlite or postgres)")

	// Governance
	flags.String("admin", "", "Administrator address (0x...)")
	flags.Bool("require-signatures", false, "Require X-Caller-Signature on mutating requests")
	flags.Duration("signature-max-age", auth.DefaultMaxSkew, "How far X-Caller-Timestamp may be from the server clock")

	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("cors-origins", "*", "Comma separated allowed CORS origins")
	flags.String("env-file", ".env", "Optional dotenv file loaded before reading env")

	return flags
}

// ParseFlags parses args and fills in the rest from env
func ParseFlags(args []string) (Config, error) {
	flags := NewFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(flags)
}

// FromFlags resolves a parsed flag set: CLI flags win over env variables
// (including those loaded from the env file), which win over defaults.
func FromFlags(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for key, env := range envNames {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return Config{}, err
		}
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(v.GetString("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		Port:              v.GetInt("port"),
		DatabaseURL:       v.GetString("database-url"),
		DatabaseType:      strings.ToLower(v.GetString("database-type")),
		RequireSignatures: v.GetBool("require-signatures"),
		SignatureMaxAge:   v.GetDuration("signature-max-age"),
		LogLevel:          strings.ToLower(v.GetString("log-level")),
	}
	for _, o := range strings.Split(v.GetString("cors-origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.SignatureMaxAge <= 0 {
		return Config{}, fmt.Errorf("signature max age must be positive, got %s", cfg.SignatureMaxAge)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("database type must be sqlite or postgres, got %q", cfg.DatabaseType)
	}

	// Administrator - MUST be provided
	admin := v.GetString("admin")
	if admin == "" {
		return Config{}, errors.New("administrator address required (use --admin or ADMIN_ADDRESS env)")
	}
	addr, err := auth.ParseAddress(admin)
	if err != nil {
		return Config{}, fmt.Errorf("administrator: %w", err)
	}
	if addr == (common.Address{}) {
		return Config{}, errors.New("administrator cannot be the zero address")
	}
	cfg.AdminAddress = addr

	return cfg, nil
}
