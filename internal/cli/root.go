package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clausewise/internal/model"
)

const version = "clausewise v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausewise",
	Short: "ClauseWise - plain-language risk review for legal documents",
	Long: `ClauseWise splits a contract into clauses, asks a language model to restate
each one in plain language with a HIGH/MEDIUM/LOW risk label, and cross-checks
every label against a fixed keyword lexicon.

When no model is configured or a model answer cannot be used, the clause is
scored by keywords alone. Keyword evidence can raise a label, never lower it.

ClauseWise is a reading aid, not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clausewise/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and CLAUSEWISE_* variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".clausewise"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureEnv maps CLAUSEWISE_SECTION_KEY variables onto section.key
func configureEnv() error {
	viper.SetEnvPrefix("CLAUSEWISE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return setDefaults(model.DefaultConfig())
}

// setDefaults registers every config key with viper so that environment
// variables resolve even for keys absent from the config file
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for key, value := range node {
			if prefix != "" {
				key = prefix + "." + key
			}
			if child, ok := value.(map[string]any); ok {
				walk(key, child)
				continue
			}
			viper.SetDefault(key, value)
		}
	}
	walk("", tree)

	// Keys omitted from the YAML defaults
	for _, key := range []string{"llm.api_key", "llm.base_url", "http.http_proxy", "http.https_proxy", "http.no_proxy", "server.upload_dir"} {
		viper.SetDefault(key, "")
	}
	return nil
}

// flagKeys maps command flags onto config keys
var flagKeys = map[string]string{
	"min-words":    "segment.min_words",
	"max-words":    "segment.max_words",
	"workers":      "concurrency.clause_workers",
	"concurrency":  "concurrency.document_workers",
	"llm-provider": "llm.provider",
	"llm-model":    "llm.model",
	"llm-timeout":  "llm.timeout",
	"rps":          "rate_limiting.requests_per_second",
	"ua":           "http.user_agent",
	"http-proxy":   "http.http_proxy",
	"https-proxy":  "http.https_proxy",
	"addr":         "server.addr",
}

// loadConfig resolves flags > env > config file > defaults for cmd
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := viper.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.Output.Color = false
	}
	return cfg, nil
}

// newLogger builds the process logger. CLI runs log warnings and above unless
// verbose; the server logs at info.
func newLogger(verbose bool, level zapcore.Level) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
