// Command guardian builds a portfolio analysis report for a Stacks vault
// address: live BTC market data, protocol metrics, the replayed on-chain
// vault state and a risk analysis.
//
// Usage:
//
//	guardian --address ST2X... [--config config.yaml] [--days 30]
//	guardian --address ST2X... --ask "should I rebalance?"
//	guardian --setup
//
// Optional environment variables:
//
//	LLM_API_KEY        key for the OpenAI-compatible provider
//	ANTHROPIC_API_KEY  key for Anthropic
//
// Without keys the analysis falls back to the built-in rule engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/vaultguardian/guardian/config"
	"github.com/vaultguardian/guardian/internal"
	"github.com/vaultguardian/guardian/internal/setup"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.RunSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	if cfg.Address == "" {
		log.Fatal("--address is required (or run with --setup)")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	keys := internal.Keys{
		OpenAI:    os.Getenv("LLM_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
	}
	if keys.OpenAI == "" {
		keys.OpenAI = os.Getenv("OPENAI_API_KEY")
	}

	guardian, err := internal.NewGuardian(cfg, keys, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer guardian.Close()

	if cfg.Ask != "" {
		insight := guardian.Insight(context.Background(), cfg.Address, cfg.Ask)
		printJSON(insight)
		return
	}

	report, err := guardian.Report(context.Background(), cfg.Address, cfg.Days)
	if err != nil {
		logger.Fatal("report generation failed", zap.String("address", cfg.Address), zap.Error(err))
	}
	printJSON(report)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
