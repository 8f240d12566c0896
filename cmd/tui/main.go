package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sztime001/trading-backtesting/internal/backtest"
	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/report"
	"github.com/sztime001/trading-backtesting/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the YAML config")
	flag.Parse()
	path := filepath.Clean(*configPath)

	reader := bufio.NewReader(os.Stdin)
	ledger := portfolio.NewLedger()

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== Backtest Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit strategy parameters")
		fmt.Println("3) Edit capital and sizing")
		fmt.Println("4) Save config")
		fmt.Println("5) Run backtest")
		fmt.Println("6) Reload config from disk")
		fmt.Println("7) Show equity curve of last run")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editStrategy(reader, cfg)
		case "3":
			editPortfolio(reader, cfg)
		case "4":
			if err := config.Save(path, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			runBacktest(cfg, ledger)
		case "6":
			reloaded, err := config.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "7":
			showCurves(reader, ledger)
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	p := cfg.Strategy.Params
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Data: %s %s (%s)\n", cfg.Data.Source, strings.Join(cfg.Data.Symbols, ", "), cfg.Data.Path)
	fmt.Printf("Strategy: %s\n", cfg.Strategy.Mode)
	fmt.Printf("  windows: short %d / long %d\n", p.ShortWindow, p.LongWindow)
	fmt.Printf("  forecast: history %s, train %s, test %s..%s, shift %d\n",
		cfg.Data.HistorySym, formatDate(p.TrainStart), formatDate(p.TestStart), formatDate(p.End), p.PredictionShift)
	fmt.Printf("Portfolio: %s\n", cfg.Portfolio.Mode)
	fmt.Printf("  initial capital: $%.2f | shares: %d | warm-up: %s\n",
		cfg.Portfolio.InitialCapital, cfg.Portfolio.Shares, formatOptional(cfg.Portfolio.Warmup))
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config is not runnable: %v\n", err)
	}
}

func editStrategy(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Strategy ---")
	cfg.Strategy.Mode = promptString(reader, "Mode (ma_cross|forecast)", cfg.Strategy.Mode)
	p := &cfg.Strategy.Params
	p.ShortWindow = int(promptFloat(reader, "Short window", float64(p.ShortWindow)))
	p.LongWindow = int(promptFloat(reader, "Long window", float64(p.LongWindow)))
	p.TrainStart = promptDate(reader, "Train start", p.TrainStart)
	p.TestStart = promptDate(reader, "Test start", p.TestStart)
	p.End = promptDate(reader, "End", p.End)
	p.PredictionShift = int(promptFloat(reader, "Prediction shift", float64(p.PredictionShift)))
}

func editPortfolio(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Capital / Sizing ---")
	cfg.Portfolio.Mode = promptString(reader, "Mode (market_on_close|intraday)", cfg.Portfolio.Mode)
	cfg.Portfolio.InitialCapital = promptFloat(reader, "Initial capital", cfg.Portfolio.InitialCapital)
	cfg.Portfolio.Shares = int(promptFloat(reader, "Shares per signal", float64(cfg.Portfolio.Shares)))
	cfg.Portfolio.Warmup = promptOptionalInt(reader, "Intraday warm-up periods", cfg.Portfolio.Warmup)
}

func runBacktest(cfg *config.Config, ledger *portfolio.Ledger) {
	fmt.Println("Running backtest...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ledger.Reset()
	log := util.NewLoggerTo(os.Stderr, cfg.App.LogLevel)
	results, err := backtest.Execute(ctx, cfg, log, os.Stdout, backtest.WithRecorder(ledger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
		return
	}
	for _, res := range results {
		s := res.Summary
		fmt.Printf("%s: final $%.2f | return %.2f%% | sharpe %.2f | max drawdown %.2f%% | trades %d\n",
			res.Symbol, s.FinalTotal, s.TotalReturn*100, s.Sharpe, s.MaxDrawdown*100, s.Trades)
	}
}

func showCurves(reader *bufio.Reader, ledger *portfolio.Ledger) {
	syms := ledger.Symbols()
	if len(syms) == 0 {
		fmt.Println("no run recorded yet")
		return
	}
	sym := promptString(reader, "Symbol ("+strings.Join(syms, ", ")+")", syms[0])
	curve := ledger.Curve(sym)
	if len(curve) == 0 {
		fmt.Printf("no curve for %s\n", sym)
		return
	}
	if err := report.WriteTail(os.Stdout, sym, curve, len(curve)); err != nil {
		fmt.Fprintf(os.Stderr, "print curve: %v\n", err)
	}
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func promptOptionalInt(reader *bufio.Reader, label string, current *int) *int {
	fmt.Printf("%s [%s]: ", label, formatOptional(current))
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return current
	case "default":
		return nil
	}
	val, err := strconv.Atoi(line)
	if err != nil {
		fmt.Printf("invalid number, keeping %s\n", formatOptional(current))
		return current
	}
	return &val
}

func formatOptional(v *int) string {
	if v == nil {
		return "default"
	}
	return strconv.Itoa(*v)
}

func promptDate(reader *bufio.Reader, label string, current config.Date) config.Date {
	fmt.Printf("%s [%s]: ", label, formatDate(current))
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	t, err := time.Parse(time.DateOnly, line)
	if err != nil {
		fmt.Printf("invalid date, keeping %s\n", formatDate(current))
		return current
	}
	return config.Date{Time: t}
}

func formatDate(d config.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(time.DateOnly)
}
