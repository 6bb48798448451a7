package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	BookingStore BookingStoreConfig
	Matching     MatchingConfig
	SideEffects  SideEffectsConfig
}

type AppConfig struct {
	Env         string
	Port        string
	CORSOrigins []string
}

type DBConfig struct {
	Driver       string
	DSN          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type BookingStoreConfig struct {
	Backend            string
	SupabaseURL        string
	SupabaseServiceKey string
	Table              string
}

// MatchingConfig holds the tunable parts of the candidate matcher. Ratios are
// kept as decimals so the band edges compare exactly.
type MatchingConfig struct {
	PrefixKeywords    []string
	ExactTolerance    decimal.Decimal
	DiscountFloor     decimal.Decimal
	DiscountCeiling   decimal.Decimal
	NameSimilarityMin float64
	PreferLatest      bool
}

type SideEffectsConfig struct {
	CalendarURL      string
	CalendarAPIKey   string
	DefaultBonusDays int
	BonusPlan        string
	DispatchTimeout  time.Duration
}

const (
	BackendDatabase = "database"
	BackendSupabase = "supabase"
)

// DefaultMatching returns the thresholds observed in production test flows:
// a 90% discount still matches, anything under 5% of the price does not.
func DefaultMatching() MatchingConfig {
	return MatchingConfig{
		PrefixKeywords:    []string{"TUVAN"},
		ExactTolerance:    decimal.RequireFromString("0.01"),
		DiscountFloor:     decimal.RequireFromString("0.05"),
		DiscountCeiling:   decimal.RequireFromString("1.01"),
		NameSimilarityMin: 0.85,
	}
}

func setDefaults(v *viper.Viper) {
	m := DefaultMatching()

	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("booking_store.backend", BackendDatabase)
	v.SetDefault("booking_store.table", "bookings")

	v.SetDefault("matching.prefix_keywords", m.PrefixKeywords)
	v.SetDefault("matching.exact_tolerance", m.ExactTolerance.String())
	v.SetDefault("matching.discount_floor", m.DiscountFloor.String())
	v.SetDefault("matching.discount_ceiling", m.DiscountCeiling.String())
	v.SetDefault("matching.name_similarity_min", m.NameSimilarityMin)
	v.SetDefault("matching.prefer_latest", false)

	v.SetDefault("side_effects.default_bonus_days", 30)
	v.SetDefault("side_effects.bonus_plan", "bonus")
	v.SetDefault("side_effects.dispatch_timeout", "10s")
}

// Load reads .env, an optional YAML file (CONFIG_FILE, default config.yaml)
// and the environment. Environment variables win: DB_DRIVER overrides
// db.driver, MATCHING_DISCOUNT_FLOOR overrides matching.discount_floor.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindAliases(v)

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

// bindAliases accepts the short variable names used by deploy scripts next to
// the nested ones AutomaticEnv derives.
func bindAliases(v *viper.Viper) {
	_ = v.BindEnv("app.port", "APP_PORT", "PORT")
	_ = v.BindEnv("db.dsn", "DB_DSN", "DATABASE_URL")
	_ = v.BindEnv("booking_store.supabase_url", "BOOKING_STORE_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("booking_store.supabase_service_key", "BOOKING_STORE_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY")
	_ = v.BindEnv("side_effects.calendar_url", "SIDE_EFFECTS_CALENDAR_URL", "CALENDAR_URL")
	_ = v.BindEnv("side_effects.calendar_api_key", "SIDE_EFFECTS_CALENDAR_API_KEY", "CALENDAR_API_KEY")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			CORSOrigins: splitList(v.GetStringSlice("app.cors_origins")),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("db.driver")),
			DSN:          v.GetString("db.dsn"),
			Host:         v.GetString("db.host"),
			Port:         v.GetString("db.port"),
			User:         v.GetString("db.user"),
			Password:     v.GetString("db.password"),
			Name:         v.GetString("db.name"),
			SSLMode:      v.GetString("db.sslmode"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
		},
		BookingStore: BookingStoreConfig{
			Backend:            strings.ToLower(v.GetString("booking_store.backend")),
			SupabaseURL:        v.GetString("booking_store.supabase_url"),
			SupabaseServiceKey: v.GetString("booking_store.supabase_service_key"),
			Table:              v.GetString("booking_store.table"),
		},
		SideEffects: SideEffectsConfig{
			CalendarURL:      v.GetString("side_effects.calendar_url"),
			CalendarAPIKey:   v.GetString("side_effects.calendar_api_key"),
			DefaultBonusDays: v.GetInt("side_effects.default_bonus_days"),
			BonusPlan:        v.GetString("side_effects.bonus_plan"),
			DispatchTimeout:  v.GetDuration("side_effects.dispatch_timeout"),
		},
	}

	m, err := matchingFromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.Matching = m

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func matchingFromViper(v *viper.Viper) (MatchingConfig, error) {
	m := MatchingConfig{
		PrefixKeywords:    splitList(v.GetStringSlice("matching.prefix_keywords")),
		NameSimilarityMin: v.GetFloat64("matching.name_similarity_min"),
		PreferLatest:      v.GetBool("matching.prefer_latest"),
	}

	var err error
	if m.ExactTolerance, err = decimal.NewFromString(v.GetString("matching.exact_tolerance")); err != nil {
		return m, fmt.Errorf("matching.exact_tolerance: %w", err)
	}
	if m.DiscountFloor, err = decimal.NewFromString(v.GetString("matching.discount_floor")); err != nil {
		return m, fmt.Errorf("matching.discount_floor: %w", err)
	}
	if m.DiscountCeiling, err = decimal.NewFromString(v.GetString("matching.discount_ceiling")); err != nil {
		return m, fmt.Errorf("matching.discount_ceiling: %w", err)
	}
	return m, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}

	switch c.BookingStore.Backend {
	case BackendDatabase:
	case BackendSupabase:
		if c.BookingStore.SupabaseURL == "" || c.BookingStore.SupabaseServiceKey == "" {
			return errors.New("supabase booking store requires BOOKING_STORE_SUPABASE_URL and BOOKING_STORE_SUPABASE_SERVICE_KEY")
		}
	default:
		return fmt.Errorf("unsupported booking store backend %q", c.BookingStore.Backend)
	}

	m := c.Matching
	if !m.DiscountFloor.IsPositive() {
		return errors.New("matching.discount_floor must be positive")
	}
	if m.DiscountFloor.GreaterThanOrEqual(m.DiscountCeiling) {
		return errors.New("matching.discount_floor must be below matching.discount_ceiling")
	}
	if m.ExactTolerance.IsNegative() {
		return errors.New("matching.exact_tolerance must not be negative")
	}
	if m.NameSimilarityMin < 0 || m.NameSimilarityMin > 1 {
		return errors.New("matching.name_similarity_min must be within [0,1]")
	}
	if c.SideEffects.DispatchTimeout <= 0 {
		return errors.New("side_effects.dispatch_timeout must be positive")
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
