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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/frank/internal/logger"
	"github.com/valpere/frank/internal/refine"
)

var (
	inputFile    string
	outputFile   string
	outputFormat string
	showSteps    bool
	quiet        bool
)

var thinkCmd = &cobra.Command{
	Use:   "think [prompt]",
	Short: "Answer a prompt through iterative self-refinement",
	Long: `Ask the model for an answer, then have it critique and improve its own
draft until the answer stops changing or the step budget is used up.

The prompt is taken from the arguments, from --input, or from stdin.
--steps counts every model call, the first draft included.

Press Ctrl-C to stop early; the best draft so far is still printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(args, inputFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		steps := checkSteps(stderr, cfg)

		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithFields(ctx, logger.Fields{
			RunID:     uuid.NewString(),
			Model:     cfg.Model,
			Component: "think",
		})

		if !quiet {
			fmt.Fprintf(stderr, "Refining with %s (%s), up to %d steps...\n", cfg.Model, cfg.Provider, steps)
		}

		bar := newProgressBar(stderr, quiet)
		engine := refine.New(client, refine.WithLogger(log))
		res, err := engine.Run(ctx, refine.Request{
			Prompt:        prompt,
			MaxIterations: steps,
			Model:         cfg.Model,
		}, refine.ReporterFuncs{Progress: bar.Update})
		bar.Finish()
		if err != nil {
			return fmt.Errorf("refinement failed: %w", err)
		}

		if res.StopReason == refine.StopCancelled {
			fmt.Fprintf(stderr, "Interrupted, showing the best draft so far\n")
		}

		out, err := render(res, outputFormat, showSteps)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		} else {
			fmt.Fprint(cmd.OutOrStdout(), out)
		}

		if !quiet {
			fmt.Fprintf(stderr, "Done: %d step(s), %s\n", res.IterationsUsed, res.StopReason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(thinkCmd)

	thinkCmd.Flags().String("steps", fmt.Sprint(refine.DefaultIterations), "Total model calls, first draft included")
	thinkCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read the prompt from a file")
	thinkCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the answer to a file instead of stdout")
	thinkCmd.Flags().StringVar(&outputFormat, "format", "markdown", "Output format: text, markdown or html")
	thinkCmd.Flags().BoolVar(&showSteps, "show-steps", false, "Print every intermediate draft")
	thinkCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "No progress output on stderr")

	bindFlags(thinkCmd, map[string]string{"steps": "steps"})
}
