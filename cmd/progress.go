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
	"strings"

	"github.com/mattn/go-isatty"
)

const barWidth = 30

// progressBar draws the run's progress on one terminal line. On a
// non-terminal writer it prints one line per update instead.
type progressBar struct {
	w        io.Writer
	disabled bool
	inPlace  bool
	drawn    bool
}

func newProgressBar(w io.Writer, quiet bool) *progressBar {
	return &progressBar{
		w:        w,
		disabled: quiet,
		inPlace:  isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *progressBar) Update(percent int) {
	if p.disabled {
		return
	}
	filled := percent * barWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	if p.inPlace {
		fmt.Fprintf(p.w, "\r[%s] %3d%%", bar, percent)
	} else {
		fmt.Fprintf(p.w, "[%s] %3d%%\n", bar, percent)
	}
	p.drawn = true
}

// Finish ends the bar's line so later output starts on a fresh one.
func (p *progressBar) Finish() {
	if p.drawn && p.inPlace {
		fmt.Fprintln(p.w)
	}
}
