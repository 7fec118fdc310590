package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/frank/internal/config"
	"github.com/valpere/frank/internal/refine"
)

func TestReadPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(path, []byte("\n  from file \n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		input   string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "args joined", args: []string{"what", "is", "Go?"}, want: "what is Go?"},
		{name: "args win over file", args: []string{"q"}, input: path, want: "q"},
		{name: "file", input: path, want: "from file"},
		{name: "stdin", stdin: "  piped\n", want: "piped"},
		{name: "empty stdin", stdin: " \n\t", wantErr: true},
		{name: "missing file", input: filepath.Join(dir, "nope"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPrompt(tt.args, tt.input, strings.NewReader(tt.stdin))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckSteps(t *testing.T) {
	var buf bytes.Buffer

	if n := checkSteps(&buf, &config.Config{Steps: "5"}); n != 5 || buf.Len() != 0 {
		t.Errorf("expected 5 without warning, got %d and %q", n, buf.String())
	}

	if n := checkSteps(&buf, &config.Config{Steps: "abc"}); n != 3 {
		t.Errorf("expected fallback to 3, got %d", n)
	}
	if !strings.Contains(buf.String(), `invalid steps value "abc"`) {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestRender(t *testing.T) {
	res := &refine.Result{
		Final:   "**final**",
		History: []string{"first", "**final**"},
	}

	out, err := render(res, "markdown", false)
	if err != nil || out != "**final**\n" {
		t.Errorf("markdown: got %q, %v", out, err)
	}

	out, err = render(res, "text", false)
	if err != nil || out != "final\n" {
		t.Errorf("text: got %q, %v", out, err)
	}

	out, err = render(res, "html", false)
	if err != nil || !strings.Contains(out, "<strong>final</strong>") {
		t.Errorf("html: got %q, %v", out, err)
	}

	out, err = render(res, "text", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Step 1") || !strings.Contains(out, "Step 2") || !strings.Contains(out, "first") {
		t.Errorf("show-steps: got %q", out)
	}

	if _, err := render(res, "pdf", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, false)
	bar.Update(50)
	bar.Update(100)
	bar.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per update on a non-terminal, got %q", buf.String())
	}
	if !strings.HasSuffix(lines[1], "100%") || strings.Contains(lines[1], "-") {
		t.Errorf("unexpected full bar %q", lines[1])
	}

	buf.Reset()
	quietBar := newProgressBar(&buf, true)
	quietBar.Update(10)
	quietBar.Finish()
	if buf.Len() != 0 {
		t.Errorf("quiet bar wrote %q", buf.String())
	}
}

func TestBuildClient(t *testing.T) {
	c := &config.Config{Provider: "ollama", Timeout: time.Second}
	if _, err := buildClient(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c = &config.Config{Provider: "openrouter", Timeout: time.Second}
	if _, err := buildClient(c); err == nil {
		t.Error("expected error for openrouter without api key")
	}
}
