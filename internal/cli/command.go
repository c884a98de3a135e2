package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"feedtrans/internal"
	"feedtrans/internal/languages"
	"feedtrans/internal/provider"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "feedtrans [files...]",
		Short: "Bulk product-feed CSV translator",
		Long: `feedtrans translates the source column of product-feed CSV files
through LLM completion APIs (DeepSeek, OpenAI or Gemini).

Duplicate texts are translated once, plain texts are packed into
character-budgeted batches, HTML cells travel alone, and requests run
concurrently under a provider-appropriate ceiling.

Examples:
  feedtrans -l fr products.csv              # Translate to French via DeepSeek
  feedtrans -l de -p openai --tier 2 *.csv  # OpenAI under tier-2 rate limits
  feedtrans -l es --test products.csv       # Test run on the first 10 lines
  feedtrans -l it --estimate products.csv   # Cost estimate only, no requests`,
		Args:    cobra.MinimumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Default history location mirrors the output layout of the web variant
	home, _ := os.UserHomeDir()
	defaultStoreDir := filepath.Join(home, ".local", "state", "feedtrans", "history")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.feedtrans.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Language, "language", "l", "", "Target language code ("+languageList()+")")
	cmd.Flags().StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Translation provider: deepseek, openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model override (default depends on provider)")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for translated files")
	cmd.Flags().StringVar(&flags.StoreDir, "history-dir", defaultStoreDir, "Directory for the run history")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Skip recording the run in the history")
	cmd.Flags().StringVar(&flags.SessionID, "session", "", "Session id (generated when empty)")
	cmd.Flags().BoolVar(&flags.Estimate, "estimate", false, "Print a cost estimate and exit without translating")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress progress output")

	cmd.Flags().IntVar(&flags.Tier, "tier", flags.Tier, "OpenAI rate-limit tier (1-5)")
	cmd.Flags().IntVar(&flags.Parallel, "parallel", 0, "Concurrency ceiling override (0 = provider default)")
	cmd.Flags().IntVar(&flags.CharBudget, "batch-chars", 0, "Character budget per packed batch (0 = 2000)")
	cmd.Flags().IntVar(&flags.SplitBytes, "split-bytes", 0, "Split output files larger than this many bytes (0 = never)")

	cmd.Flags().BoolVar(&flags.TestMode, "test", false, "Translate only the first few lines of each file")
	cmd.Flags().IntVar(&flags.TestLines, "test-lines", flags.TestLines, "Lines per file in test mode")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("translate.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translate.tier", cmd.Flags().Lookup("tier"))
	viper.BindPFlag("translate.parallel", cmd.Flags().Lookup("parallel"))
	viper.BindPFlag("translate.batch_chars", cmd.Flags().Lookup("batch-chars"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.split_bytes", cmd.Flags().Lookup("split-bytes"))
	viper.BindPFlag("history.directory", cmd.Flags().Lookup("history-dir"))
}

func languageList() string {
	list := ""
	for i, lang := range languages.All() {
		if i > 0 {
			list += ", "
		}
		list += lang.Code
	}
	return list
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".feedtrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".feedtrans")
	}

	// Environment variables
	viper.SetEnvPrefix("FEEDTRANS")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetDeepSeekKey retrieves the DeepSeek API key from environment or config
func GetDeepSeekKey() string {
	// First check environment variable
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("api.deepseek_key")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("api.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("api.gemini_key")
}

// KeyForProvider returns the configured API key for a provider name.
func KeyForProvider(name string) (string, error) {
	var key string
	switch name {
	case "deepseek":
		key = GetDeepSeekKey()
	case "openai":
		key = GetOpenAIKey()
	case "gemini":
		key = GetGeminiKey()
	default:
		return "", fmt.Errorf("unknown provider %q (valid: %v)", name, provider.Providers())
	}
	if key == "" {
		return "", fmt.Errorf("no API key configured for %s", name)
	}
	return key, nil
}
