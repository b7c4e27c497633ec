package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Bybit struct {
		BaseURL        string        `yaml:"base_url"`
		Category       string        `yaml:"category"`
		Interval       string        `yaml:"interval"`
		KlineLimit     int           `yaml:"kline_limit"`
		QuoteSuffix    string        `yaml:"quote_suffix"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		Workers        int           `yaml:"workers"`
		Stream         struct {
			Enabled        bool          `yaml:"enabled"`
			URL            string        `yaml:"url"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"stream"`
	} `yaml:"bybit"`
	Strategy struct {
		ZScorePeriod    int     `yaml:"z_score_period"`
		ZScoreThreshold float64 `yaml:"z_score_threshold"`
		SMAPeriod       int     `yaml:"sma_period"`
		RSIPeriod       int     `yaml:"rsi_period"`
		RSIOverbought   float64 `yaml:"rsi_overbought"`
		RSIOversold     float64 `yaml:"rsi_oversold"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		VolumeSMAPeriod int     `yaml:"volume_sma_period"`
		MinCandles      int     `yaml:"min_candles"`
		MinPrecision    float64 `yaml:"min_precision"`
	} `yaml:"strategy"`
	Cache struct {
		SymbolsTTL time.Duration `yaml:"symbols_ttl"`
		SeriesTTL  time.Duration `yaml:"series_ttl"`
		PriceTTL   time.Duration `yaml:"price_ttl"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Scheduler struct {
		Enabled       bool          `yaml:"enabled"`
		AnalyzeSpec   string        `yaml:"analyze_spec"`
		CacheSweep    string        `yaml:"cache_sweep_spec"`
		MarkStaleSpec string        `yaml:"mark_stale_spec"`
		StaleAfter    time.Duration `yaml:"stale_after"`
	} `yaml:"scheduler"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BYBIT_API_URL"); v != "" {
		c.Bybit.BaseURL = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Bybit.BaseURL == "" {
		c.Bybit.BaseURL = "https://api.bybit.com"
	}
	if c.Bybit.Category == "" {
		c.Bybit.Category = "linear"
	}
	if c.Bybit.Interval == "" {
		c.Bybit.Interval = "240" // 4h bars
	}
	if c.Bybit.KlineLimit <= 0 {
		c.Bybit.KlineLimit = 100
	}
	if c.Bybit.QuoteSuffix == "" {
		c.Bybit.QuoteSuffix = "USDT"
	}
	if c.Bybit.RequestTimeout <= 0 {
		c.Bybit.RequestTimeout = 5 * time.Second
	}
	if c.Bybit.Workers <= 0 {
		c.Bybit.Workers = 5
	}
	s := &c.Strategy
	if s.ZScorePeriod <= 0 {
		s.ZScorePeriod = 20
	}
	if s.ZScoreThreshold <= 0 {
		s.ZScoreThreshold = 2.0
	}
	if s.SMAPeriod <= 0 {
		s.SMAPeriod = 50
	}
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = 14
	}
	if s.RSIOverbought <= 0 {
		s.RSIOverbought = 70
	}
	if s.RSIOversold <= 0 {
		s.RSIOversold = 30
	}
	if s.MACDFast <= 0 {
		s.MACDFast = 12
	}
	if s.MACDSlow <= 0 {
		s.MACDSlow = 26
	}
	if s.MACDSignal <= 0 {
		s.MACDSignal = 9
	}
	if s.VolumeSMAPeriod <= 0 {
		s.VolumeSMAPeriod = 20
	}
	if s.MinCandles <= 0 {
		s.MinCandles = 50
	}
	if s.MinPrecision <= 0 {
		s.MinPrecision = 60
	}
	if c.Cache.SymbolsTTL <= 0 {
		c.Cache.SymbolsTTL = 10 * time.Minute
	}
	if c.Cache.SeriesTTL <= 0 {
		c.Cache.SeriesTTL = 5 * time.Minute
	}
	if c.Cache.PriceTTL <= 0 {
		c.Cache.PriceTTL = time.Minute
	}
	if c.Scheduler.StaleAfter <= 0 {
		c.Scheduler.StaleAfter = 4 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis cache is enabled")
	}
	if c.Strategy.MACDFast >= c.Strategy.MACDSlow {
		return fmt.Errorf("strategy.macd_fast must be less than strategy.macd_slow")
	}
	return nil
}
