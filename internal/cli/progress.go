package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/nutrisort/internal/electre"
)

// RunProgress shows how many evaluation runs have finished. Done is safe to
// call from several goroutines, so it can be passed as
// electre.EvaluationConfig.OnRunDone.
type RunProgress struct {
	writer   io.Writer
	bar      *progressbar.ProgressBar
	finished []string
	mu       sync.Mutex
}

// NewRunProgress creates a progress bar for total runs.
func NewRunProgress(writer io.Writer, total int) *RunProgress {
	if writer == nil {
		writer = os.Stderr
	}

	p := &RunProgress{writer: writer}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[green][bold]Sorting products...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Done records one finished run.
func (p *RunProgress) Done(run electre.RunResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished = append(p.finished, run.Name)
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finished returns the names of finished runs in completion order.
func (p *RunProgress) Finished() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.finished...)
}
