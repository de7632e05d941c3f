package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vaultguardian/guardian/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes config.gen.yaml.
func RunTUI() error {
	cfg := config.Default()

	var (
		provider    string
		pageSizeStr = strconv.Itoa(cfg.TxPageSize)
		confirm     bool
	)

	// step 1: welcome
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point guardian at your vault and market data sources.\n"))

	// oracle
	fmt.Println(stepStyle.Render("STEP 1: PRICE ORACLE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Oracle API URL").
				Description("CoinGecko-compatible base URL").
				Value(&cfg.OracleURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Asset ID").
				Description("Oracle asset identifier (e.g. bitcoin)").
				Value(&cfg.AssetID).
				Validate(nonEmpty("asset id")),
		),
	).Run()
	if err != nil {
		return err
	}

	// indexer
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: CHAIN INDEXER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Indexer API URL").
				Description("Hiro-compatible Stacks API base URL").
				Value(&cfg.IndexerURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Vault Contract ID").
				Description("Deployed vault contract (address.name)").
				Value(&cfg.ContractID).
				Validate(nonEmpty("contract id")),
			huh.NewInput().
				Title("Transactions Per Page").
				Value(&pageSizeStr).
				Validate(validatePageSize),
		),
	).Run()
	if err != nil {
		return err
	}

	// advisor provider
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: ADVISOR"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Analysis Provider").
				Description("Rule-based analysis always remains available as fallback").
				Options(
					huh.NewOption("OpenAI-compatible API", "openai"),
					huh.NewOption("Anthropic", "anthropic"),
					huh.NewOption("Rule-based only", "none"),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	if provider == "openai" {
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 4: OPENAI-COMPATIBLE SETTINGS"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("LLM API URL").
					Value(&cfg.LLMAPIURL).
					Validate(validateURL),
				huh.NewInput().
					Title("Model Name").
					Value(&cfg.LLMModel).
					Validate(nonEmpty("model")),
			),
		).Run()
		if err != nil {
			return err
		}
	} else if provider == "anthropic" {
		cfg.LLMAPIURL = ""
		fmt.Print("\033[H\033[2J")
		fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
		fmt.Println(stepStyle.Render("STEP 4: ANTHROPIC SETTINGS"))
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Model Name").
					Value(&cfg.AnthropicModel).
					Validate(nonEmpty("model")),
			),
		).Run()
		if err != nil {
			return err
		}
	} else {
		cfg.LLMAPIURL = ""
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Oracle: %s (%s)\nIndexer: %s\nContract: %s\nProvider: %s\n",
		cfg.OracleURL, cfg.AssetID, cfg.IndexerURL, cfg.ContractID, provider,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfg.TxPageSize, _ = strconv.Atoi(pageSizeStr)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	keyHint := ""
	switch provider {
	case "openai":
		keyHint = "\nSet LLM_API_KEY before running."
	case "anthropic":
		keyHint = "\nSet ANTHROPIC_API_KEY before running."
	}
	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s%s", filename, keyHint)))
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be a valid http(s) URL")
	}
	return nil
}

func validatePageSize(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 50 {
		return fmt.Errorf("must be a number between 1 and 50")
	}
	return nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}
