package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"RWAPulse/internal/domain/models"
	"RWAPulse/internal/services/analytics"
	"RWAPulse/pkg/util"
)

// WatchItem is one asset fed to the synthetic provider.
type WatchItem struct {
	ID                string  `yaml:"id" validate:"required"`
	Name              string  `yaml:"name"`
	BasePrice         float64 `yaml:"base_price" validate:"gt=0"`
	VolatilityProfile int     `yaml:"volatility_profile" default:"1" validate:"gte=1,lte=3"`
	OnChainSupply     int     `yaml:"on_chain_supply" validate:"gte=0"`
	OffChainSupply    int     `yaml:"off_chain_supply" validate:"gte=0"`
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Logging     struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout" validate:"required"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"500ms"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	RateLimit struct {
		RPS   float64 `yaml:"rps" default:"5" validate:"gte=0"`
		Burst int     `yaml:"burst" default:"10" validate:"gte=0"`
	} `yaml:"rate_limit"`
	Venues struct {
		OnChain  []string `yaml:"on_chain" validate:"required,min=1,dive,required"`
		OffChain []string `yaml:"off_chain" validate:"required,min=1,dive,required"`
	} `yaml:"venues"`
	Thresholds struct {
		DivergenceCriticalPct float64 `yaml:"divergence_critical_pct" default:"10"`
		DivergenceWatchPct    float64 `yaml:"divergence_watch_pct" default:"0"`
		ScarcityMinCount      int     `yaml:"scarcity_min_count" default:"10"`
		LiquidityDropPct      float64 `yaml:"liquidity_drop_pct" default:"-20"`
	} `yaml:"thresholds"`
	Monitor struct {
		Interval time.Duration `yaml:"interval" default:"10s"`
		Workers  int           `yaml:"workers" default:"4" validate:"gte=1,lte=256"`
	} `yaml:"monitor"`
	Provider struct {
		Type string `yaml:"type" default:"file" validate:"oneof=file synthetic http clickhouse"`
		File struct {
			Path   string `yaml:"path" default:"data/real_snapshot.json"`
			Sample int    `yaml:"sample" default:"0" validate:"gte=0"`
		} `yaml:"file"`
		Synthetic struct {
			Seed       int64       `yaml:"seed" default:"0"`
			WindowDays int         `yaml:"window_days" default:"7" validate:"gte=2,lte=90"`
			MaxDrift   float64     `yaml:"max_drift" default:"0.15" validate:"gte=0,lt=1"`
			Watchlist  []WatchItem `yaml:"watchlist" validate:"dive"`
		} `yaml:"synthetic"`
		HTTP struct {
			URL     string        `yaml:"url"`
			Timeout time.Duration `yaml:"timeout" default:"5s"`
			Retries int           `yaml:"retries" default:"3" validate:"gte=1,lte=10"`
			Sample  int           `yaml:"sample" default:"0" validate:"gte=0"`
		} `yaml:"http"`
	} `yaml:"provider"`
	Render struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		Banner  bool          `yaml:"banner" default:"false"`
		Pacing  time.Duration `yaml:"pacing" default:"0s"`
	} `yaml:"render"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" default:"false"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"rwapulse.signals"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"false"`
		} `yaml:"producer"`
		Pipeline struct {
			BufferSize int `yaml:"buffer_size" default:"1000" validate:"gte=1"`
		} `yaml:"pipeline"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"rwapulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		QuotesTable      string        `yaml:"quotes_table" default:"venue_quotes"`
		SupplyTable      string        `yaml:"supply_table" default:"asset_supply"`
	} `yaml:"clickhouse"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"10m"`
		Redis struct {
			Enabled  bool   `yaml:"enabled" default:"false"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" default:"0"`
			Key      string `yaml:"key" default:"rwapulse:latest_report"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

var validate = validator.New()

// Parse applies defaults, decodes YAML over them and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// watchlist items are decoded after defaults ran on the (empty) slice
	for i := range c.Provider.Synthetic.Watchlist {
		if c.Provider.Synthetic.Watchlist[i].VolatilityProfile == 0 {
			c.Provider.Synthetic.Watchlist[i].VolatilityProfile = 1
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("RWAPULSE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("RWAPULSE_PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("RWAPULSE_SNAPSHOT_PATH"); v != "" {
		c.Provider.File.Path = v
	}
	if v := os.Getenv("RWAPULSE_SNAPSHOT_URL"); v != "" {
		c.Provider.HTTP.URL = v
	}
	if v := os.Getenv("RWAPULSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RWAPULSE_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	// overrides can break invariants; check again
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks tag rules first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Provider.Type {
	case "file":
		if c.Provider.File.Path == "" {
			return fmt.Errorf("provider.file.path is required")
		}
	case "synthetic":
		if len(c.Provider.Synthetic.Watchlist) == 0 {
			return fmt.Errorf("provider.synthetic.watchlist cannot be empty")
		}
	case "http":
		if c.Provider.HTTP.URL == "" {
			return fmt.Errorf("provider.http.url is required")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for provider.type=clickhouse")
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka.enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka.enabled")
		}
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be > 0")
	}
	if _, err := models.NewVenueClasses(c.Venues.OnChain, c.Venues.OffChain); err != nil {
		return fmt.Errorf("venues: %w", err)
	}
	if err := c.SignalThresholds().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// SignalThresholds maps the thresholds block onto the classifier config.
func (c *Config) SignalThresholds() analytics.ThresholdConfig {
	return analytics.ThresholdConfig{
		DivergenceCriticalPct: c.Thresholds.DivergenceCriticalPct,
		DivergenceWatchPct:    c.Thresholds.DivergenceWatchPct,
		ScarcityMinCount:      c.Thresholds.ScarcityMinCount,
		LiquidityDropPct:      c.Thresholds.LiquidityDropPct,
	}
}
