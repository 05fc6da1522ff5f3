// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cabarcas/TradingBot/internal/market"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	PrettyLogs  bool   `yaml:"pretty_logs"`
}

// Exchange describes the venue connectivity parameters the bot expects.
// Provider selects the tick source: "stub" for deterministic synthetic
// ticks, "binance" for the live public trade stream. Orders always go
// through the paper gateway; live order endpoints sit behind the Gateway
// interface and are wired by a separate connector.
type Exchange struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	Testnet  bool   `yaml:"testnet"`
}

// Paper configures the simulated venue backing the paper gateway.
type Paper struct {
	StartingBalance float64 `yaml:"starting_balance"`
	// FillAfterPolls delays fill confirmation by N status queries so the
	// recurring check path is exercised. 0 fills orders on submission.
	FillAfterPolls int    `yaml:"fill_after_polls"`
	JournalPath    string `yaml:"journal_path"`
	// BootstrapCandles is how many seed candles the paper gateway
	// synthesizes for historical bootstrap.
	BootstrapCandles int `yaml:"bootstrap_candles"`
}

// Execution tunes the order lifecycle manager.
type Execution struct {
	PollIntervalMs int     `yaml:"poll_interval_ms"`
	GatewayRate    float64 `yaml:"gateway_rate_per_sec"`
	GatewayBurst   int     `yaml:"gateway_burst"`
}

// StrategyParams groups the variant-specific indicator knobs.
type StrategyParams struct {
	EMAFast   int     `yaml:"ema_fast"`
	EMASlow   int     `yaml:"ema_slow"`
	EMASignal int     `yaml:"ema_signal"`
	RSILength int     `yaml:"rsi_length"`
	MinVolume float64 `yaml:"min_volume"`
}

// Strategy declares one strategy instance: a (symbol, timeframe, variant)
// tuple plus risk and indicator parameters.
type Strategy struct {
	Symbol     string         `yaml:"symbol"`
	Timeframe  string         `yaml:"timeframe"`
	Variant    string         `yaml:"variant"`
	BalancePct float64        `yaml:"balance_pct"`
	TakeProfit float64        `yaml:"take_profit"`
	StopLoss   float64        `yaml:"stop_loss"`
	Multiplier float64        `yaml:"multiplier"`
	Inverse    bool           `yaml:"inverse"`
	Quanto     bool           `yaml:"quanto"`
	Params     StrategyParams `yaml:"params"`
}

// Contract builds the instrument descriptor for this strategy.
func (s Strategy) Contract() market.Contract {
	return market.Contract{
		Symbol:     s.Symbol,
		Multiplier: s.Multiplier,
		Inverse:    s.Inverse,
		Quanto:     s.Quanto,
	}
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Exchange   Exchange   `yaml:"exchange"`
	Execution  Execution  `yaml:"execution"`
	Paper      Paper      `yaml:"paper"`
	Strategies []Strategy `yaml:"strategies"`
}

// Load reads a YAML file from disk and hydrates a Config struct. A .env
// file, when present, is loaded first so credentials and overrides stay out
// of the YAML.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.MetricsAddr == "" {
		c.App.MetricsAddr = getEnv("METRICS_ADDR", ":9100")
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = getEnv("LOG_LEVEL", "info")
	}
	if c.Exchange.Provider == "" {
		c.Exchange.Provider = "stub"
	}
	if c.Paper.StartingBalance <= 0 {
		c.Paper.StartingBalance = 1.0
	}
	if c.Paper.BootstrapCandles <= 0 {
		c.Paper.BootstrapCandles = 50
	}
	if c.Execution.PollIntervalMs <= 0 {
		c.Execution.PollIntervalMs = 2000
	}
	if c.Execution.GatewayRate <= 0 {
		c.Execution.GatewayRate = 5
	}
	if c.Execution.GatewayBurst <= 0 {
		c.Execution.GatewayBurst = 5
	}
	for i := range c.Strategies {
		if c.Strategies[i].Multiplier <= 0 {
			c.Strategies[i].Multiplier = 1
		}
	}
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("config: no strategies declared")
	}
	for _, s := range c.Strategies {
		if s.Symbol == "" {
			return fmt.Errorf("config: strategy with empty symbol")
		}
		if !market.Timeframe(s.Timeframe).Valid() {
			return fmt.Errorf("config: strategy %s: unknown timeframe %q", s.Symbol, s.Timeframe)
		}
		switch s.Variant {
		case "technical", "breakout":
		default:
			return fmt.Errorf("config: strategy %s: unknown variant %q", s.Symbol, s.Variant)
		}
		if s.BalancePct <= 0 || s.BalancePct > 100 {
			return fmt.Errorf("config: strategy %s: balance_pct must be in (0, 100]", s.Symbol)
		}
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
