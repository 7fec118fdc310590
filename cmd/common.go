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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/valpere/frank/internal/chat"
	"github.com/valpere/frank/internal/config"
	"github.com/valpere/frank/internal/markdown"
	"github.com/valpere/frank/internal/refine"
)

// buildClient constructs the chat backend named in the configuration.
func buildClient(c *config.Config) (chat.Client, error) {
	client, err := chat.New(c.Chat())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", c.Provider, err)
	}
	return client, nil
}

// checkSteps warns when the configured step count will be replaced by the
// default.
func checkSteps(w io.Writer, c *config.Config) int {
	n := c.Iterations()
	if v, err := strconv.Atoi(strings.TrimSpace(c.Steps)); err != nil || v < 1 {
		fmt.Fprintf(w, "Warning: invalid steps value %q, using %d\n", c.Steps, n)
	}
	return n
}

// readPrompt takes the prompt from args, then the input file, then stdin.
func readPrompt(args []string, inputPath string, stdin io.Reader) (string, error) {
	var raw string
	switch {
	case len(args) > 0:
		raw = strings.Join(args, " ")
	case inputPath != "":
		b, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		raw = string(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(b)
	}

	prompt := refine.NormalizePrompt(raw)
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	return prompt, nil
}

// render formats the run's output. With showSteps every draft is printed
// under a "Step N" heading, otherwise only the final draft. Drafts are
// treated as markdown: "markdown" passes them through, "text" strips the
// markup and "html" renders it.
func render(res *refine.Result, format string, showSteps bool) (string, error) {
	var b strings.Builder
	if showSteps {
		for i, draft := range res.History {
			fmt.Fprintf(&b, "## Step %d\n\n%s\n\n", i+1, draft)
		}
	} else {
		b.WriteString(res.Final)
		b.WriteString("\n")
	}
	text := b.String()

	switch format {
	case "", "markdown":
		return text, nil
	case "text":
		plain, err := markdown.ToPlainText([]byte(text))
		if err != nil {
			return "", fmt.Errorf("failed to render text: %w", err)
		}
		return plain + "\n", nil
	case "html":
		html, err := markdown.ToHTML([]byte(text))
		if err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
		return html, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, markdown or html)", format)
}
