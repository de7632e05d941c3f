package config

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultOracleURL  = "https://api.coingecko.com/api/v3"
	defaultAssetID    = "bitcoin"
	// The default contract below is a testnet deployment, so the indexer
	// default has to be the testnet API.
	defaultIndexerURL = "https://api.testnet.hiro.so"
	defaultContractID = "ST2X1GBHA2WJXREWP231EEQXZ1GDYZEEXYRAD1PA8.sbtc-vault"
	defaultTxPageSize = 50

	defaultLLMModel       = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Config holds upstream endpoints and advisor settings. API keys are never
// stored in yaml, they come from LLM_API_KEY and ANTHROPIC_API_KEY.
type Config struct {
	OracleURL  string `yaml:"oracle_url"`
	AssetID    string `yaml:"asset_id"`
	IndexerURL string `yaml:"indexer_url"`
	ContractID string `yaml:"contract_id"`
	TxPageSize int    `yaml:"tx_page_size"`

	LLMAPIURL      string `yaml:"llm_api_url"`
	LLMModel       string `yaml:"llm_model"`
	AnthropicModel string `yaml:"anthropic_model"`

	// CLI-only settings, not read from yaml.
	Address  string `yaml:"-"`
	Days     int    `yaml:"-"`
	Ask      string `yaml:"-"`
	RunSetup bool   `yaml:"-"`
}

// Get parses command-line flags and, when --config is provided, merges the
// yaml file on top of the defaults.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	address := flag.String("address", "", "Stacks address to build the report for")
	days := flag.Int("days", 30, "price history window in days")
	ask := flag.String("ask", "", "free-form question to ask the advisor instead of a full report")
	setup := flag.Bool("setup", false, "run the interactive config wizard")
	flag.Parse()

	cfg := Default()
	if *configPath != "" {
		if err := cfg.loadYaml(*configPath); err != nil {
			return Config{}, err
		}
	}

	cfg.Address = *address
	cfg.Days = *days
	cfg.Ask = *ask
	cfg.RunSetup = *setup

	return cfg, nil
}

// Default returns a config pointing at the public CoinGecko and Hiro APIs.
func Default() Config {
	return Config{
		OracleURL:      defaultOracleURL,
		AssetID:        defaultAssetID,
		IndexerURL:     defaultIndexerURL,
		ContractID:     defaultContractID,
		TxPageSize:     defaultTxPageSize,
		LLMModel:       defaultLLMModel,
		AnthropicModel: defaultAnthropicModel,
	}
}

func (c *Config) loadYaml(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if c.TxPageSize <= 0 {
		c.TxPageSize = defaultTxPageSize
	}

	return nil
}
