// Package config exposes strongly typed backtest configuration structs loaded from YAML.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data describes where price series come from.
type Data struct {
	Source      string    `yaml:"source"` // csv|synthetic
	Symbols     []string  `yaml:"symbols"`
	Path        string    `yaml:"path"`         // traded bars; {symbol} is substituted
	HistoryPath string    `yaml:"history_path"` // forecaster training history, defaults to Path
	HistorySym  string    `yaml:"history_symbol"`
	Synthetic   Synthetic `yaml:"synthetic"`
}

// Synthetic configures the deterministic offline price generator.
type Synthetic struct {
	Bars       int     `yaml:"bars"`
	StartPrice float64 `yaml:"start_price"`
	Seed       uint64  `yaml:"seed"`
	Start      Date    `yaml:"start"`
	Drift      float64 `yaml:"drift"`      // mean daily log return
	Volatility float64 `yaml:"volatility"` // daily log-return stddev, 0 keeps the generator default
}

// StrategyParams groups tunable knobs for a strategy implementation.
type StrategyParams struct {
	ShortWindow     int     `yaml:"short_window"`
	LongWindow      int     `yaml:"long_window"`
	Lags            int     `yaml:"lags"`
	Nudge           float64 `yaml:"nudge"`
	Warmup          *int    `yaml:"warmup,omitempty"` // unset selects the default, 0 disables
	PredictionShift int     `yaml:"prediction_shift"`
	TrainStart      Date    `yaml:"train_start"`
	TestStart       Date    `yaml:"test_start"`
	End             Date    `yaml:"end"`
}

// Strategy specifies which strategy is active along with the parameter bundle.
type Strategy struct {
	Mode   string         `yaml:"mode"`
	Params StrategyParams `yaml:"params"`
}

// Portfolio selects the simulator and its sizing.
type Portfolio struct {
	Mode           string  `yaml:"mode"`
	InitialCapital float64 `yaml:"initial_capital"`
	Shares         int     `yaml:"shares"`
	Warmup         *int    `yaml:"warmup,omitempty"` // unset selects the default, 0 disables
}

// Output controls what a run leaves behind.
type Output struct {
	StatesPath string `yaml:"states_path"`
	TailRows   int    `yaml:"tail_rows"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Data      Data      `yaml:"data"`
	Strategy  Strategy  `yaml:"strategy"`
	Portfolio Portfolio `yaml:"portfolio"`
	Output    Output    `yaml:"output"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
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

// Validate reports the first parameter combination no run could use.
func (c *Config) Validate() error {
	p := c.Strategy.Params
	switch strings.ToLower(strings.TrimSpace(c.Strategy.Mode)) {
	case "", "ma_cross", "ma", "moving_average":
		if p.ShortWindow <= 0 || p.LongWindow <= 0 || p.ShortWindow >= p.LongWindow {
			return fmt.Errorf("%w: need 0 < short_window < long_window, got %d/%d", signal.ErrConfiguration, p.ShortWindow, p.LongWindow)
		}
	case "forecast", "qda", "forecasting":
		if p.TrainStart.IsZero() || p.TestStart.IsZero() || !p.TestStart.After(p.TrainStart.Time) {
			return fmt.Errorf("%w: test_start must follow train_start", signal.ErrConfiguration)
		}
		if p.PredictionShift < 0 {
			return fmt.Errorf("%w: prediction_shift must not be negative", signal.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown strategy mode %q", signal.ErrConfiguration, c.Strategy.Mode)
	}
	capital := c.Portfolio.InitialCapital
	if capital <= 0 || math.IsInf(capital, 0) || math.IsNaN(capital) {
		return fmt.Errorf("%w: initial_capital must be positive", signal.ErrConfiguration)
	}
	if c.Portfolio.Shares < 0 || negative(c.Portfolio.Warmup) || negative(p.Warmup) {
		return fmt.Errorf("%w: shares and warm-up periods must not be negative", signal.ErrConfiguration)
	}
	if len(c.Data.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols configured", signal.ErrConfiguration)
	}
	return nil
}

func negative(v *int) bool { return v != nil && *v < 0 }

// Date is a calendar day written as YYYY-MM-DD in YAML.
type Date struct{ time.Time }

// UnmarshalYAML parses YYYY-MM-DD; an empty scalar leaves the zero date.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" || raw == "~" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Time = t
	return nil
}

// MarshalYAML writes the date back as YYYY-MM-DD.
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(time.DateOnly), nil
}
