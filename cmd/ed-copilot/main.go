// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ed-copilot CLI: a prototype chat
// assistant that grounds emergency-medicine answers in PubMed metadata with
// inline PMID citations. Demo only; not for clinical use, no PHI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmossmd/ed-copilot/internal/secrets"
	"github.com/dmossmd/ed-copilot/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ (and the
// environment) at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the ed-copilot CLI.
var rootCmd = &cobra.Command{
	Use:   "ed-copilot",
	Short: "PubMed-grounded chat assistant for ED clinical questions",
	Long: `ed-copilot answers free-text emergency-medicine questions. Each turn
searches PubMed for related articles, assembles their metadata into a
grounding context, and asks a language model to draft a structured answer
(or patient discharge instructions) citing only the retrieved PMIDs.

Prototype for demo only. Not for clinical use. Do not enter patient
identifiers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ed-copilot.yaml or ~/.config/ed-copilot/config.yaml)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 20s)")
	rootCmd.PersistentFlags().String("cache", "", "path to the response cache database (default: in-memory)")
	rootCmd.PersistentFlags().Duration("cache-ttl", 0, "response cache freshness window (default 1h)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ed-copilot")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ed-copilot"))
		}
	}

	viper.SetEnvPrefix("ED_COPILOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the runtime configuration from config file, flags, and
// secrets. Flags win over the config file; secrets fill the credentials.
func appConfig(cmd *cobra.Command) types.AppConfig {
	cfg := types.AppConfig{
		PubMed: types.PubMedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("pubmed.timeout"),
				UserAgent: viper.GetString("pubmed.user_agent"),
			},
			RetMax:           viper.GetInt("pubmed.retmax"),
			CacheTTL:         viper.GetDuration("pubmed.cache_ttl"),
			FetchAbstracts:   viper.GetBool("pubmed.fetch_abstracts"),
			MaxAbstractChars: viper.GetInt("pubmed.max_abstract_chars"),
		},
		Answer: types.AnswerConfig{
			Model:              viper.GetString("answer.model"),
			Temperature:        float32(viper.GetFloat64("answer.temperature")),
			WorkupMaxTokens:    viper.GetInt("answer.workup_max_tokens"),
			DischargeMaxTokens: viper.GetInt("answer.discharge_max_tokens"),
			HistoryWindow:      viper.GetInt("answer.history_window"),
		},
	}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.PubMed.Timeout = timeout
	}
	if ttl, _ := cmd.Flags().GetDuration("cache-ttl"); ttl > 0 {
		cfg.PubMed.CacheTTL = ttl
	}
	if cfg.PubMed.CacheTTL == 0 {
		cfg.PubMed.CacheTTL = time.Hour
	}

	cfg.PubMed.APIKey = loadedSecrets[secrets.KeyNCBI]
	cfg.Answer.APIKey = loadedSecrets[secrets.KeyOpenAI]
	cfg.Passcode = loadedSecrets[secrets.KeyPasscode]

	return cfg.WithDefaults()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
