// Binary console is an interactive control panel over the bot
// configuration: inspect strategies, tune risk knobs, and launch the
// engine without editing YAML by hand.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cabarcas/TradingBot/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== TradingBot Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit risk parameters")
		fmt.Println("3) Save config")
		fmt.Println("4) Launch bot")
		fmt.Println("5) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editRisk(reader, cfg)
		case "3":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "4":
			launchBot(reader)
		case "5":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Exchange: %s (provider %s, testnet %v)\n", cfg.Exchange.Name, cfg.Exchange.Provider, cfg.Exchange.Testnet)
	fmt.Printf("Paper balance: %.4f | fill after polls: %d\n", cfg.Paper.StartingBalance, cfg.Paper.FillAfterPolls)
	fmt.Printf("Status poll interval: %dms\n", cfg.Execution.PollIntervalMs)
	for _, s := range cfg.Strategies {
		fmt.Printf("  %-10s %-4s %-10s balance %.1f%% tp %.1f%% sl %.1f%%\n",
			s.Symbol, s.Timeframe, s.Variant, s.BalancePct, s.TakeProfit, s.StopLoss)
	}
}

func editRisk(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Risk Parameters ---")
	cfg.Paper.StartingBalance = promptFloat(reader, "Paper starting balance", cfg.Paper.StartingBalance)
	for i := range cfg.Strategies {
		s := &cfg.Strategies[i]
		fmt.Printf("\n%s %s (%s)\n", s.Symbol, s.Timeframe, s.Variant)
		s.BalancePct = promptFloat(reader, "Balance %% per entry", s.BalancePct)
		s.TakeProfit = promptFloat(reader, "Take profit %%", s.TakeProfit)
		s.StopLoss = promptFloat(reader, "Stop loss %%", s.StopLoss)
	}
}

func launchBot(reader *bufio.Reader) {
	fmt.Println("Launching bot (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/bot")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start bot: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the bot and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
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

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if filepath.IsAbs(defaultConfigPath) {
		return defaultConfigPath
	}
	return filepath.Clean(defaultConfigPath)
}
