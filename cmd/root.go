/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/frank/internal/chat"
	"github.com/valpere/frank/internal/config"
	"github.com/valpere/frank/internal/logger"
	"github.com/valpere/frank/internal/refine"
)

var version = "0.1.0"

var (
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "frank",
	Short: "Iterative LLM self-refinement",
	Long: `frank asks a language model for an answer, then has the model critique and
improve its own previous draft several times, keeping every intermediate draft.

The loop stops early once a new draft is identical to the one before it.

Supported backends: Ollama (default), OpenRouter, any OpenAI-compatible API

Use "frank think --help" for refinement options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		log, err = logger.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./.frank.yaml or $HOME/.frank.yaml)")
	pf.String("provider", chat.ProviderOllama, "Backend: ollama, openrouter or openai")
	pf.String("base-url", "", "Backend base URL (provider default if empty)")
	pf.String("api-key", "", "API key for openrouter or openai")
	pf.Duration("timeout", chat.DefaultTimeout, "Per-call timeout")
	pf.StringP("model", "m", refine.DefaultModel, "Model name")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")

	bindFlags(rootCmd, map[string]string{
		"provider":   "provider",
		"base_url":   "base-url",
		"api_key":    "api-key",
		"timeout":    "timeout",
		"model":      "model",
		"log.level":  "log-level",
		"log.format": "log-format",
	})
}

// bindFlags ties viper keys to flags of cmd so a flag set on the command
// line overrides the config file and environment.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			f = cmd.Flags().Lookup(name)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
