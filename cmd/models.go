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
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/frank/internal/chat"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		lister, ok := client.(chat.ModelLister)
		if !ok {
			return fmt.Errorf("provider %s does not support listing models", cfg.Provider)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		models, err := lister.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(models) == 0 {
			fmt.Fprintln(out, "No models available.")
			return nil
		}

		sort.Strings(models)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tDEFAULT")
		for _, m := range models {
			mark := ""
			if m == cfg.Model {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\n", m, mark)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
