package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rubiojr/wrapgen/output"
	"github.com/schollz/progressbar/v3"
)

// newProgress returns a write callback advancing a progress bar over total
// headers, or nil when the bar is disabled.
func newProgress(total int, enabled bool) func(output.Artifact, error) {
	if !enabled || total == 0 {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Writing headers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return func(output.Artifact, error) {
		_ = bar.Add(1)
	}
}
