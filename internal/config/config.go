// Package config defines the CLI surface: the flags cmd/emd binds to
// cobra, and the resolved Config the rest of the program consumes.
package config

import "fmt"

// OutputFormat selects whether the output stream carries LiME headers.
type OutputFormat string

const (
	OutputFormatLiME OutputFormat = "lime"
	OutputFormatRaw  OutputFormat = "raw"
)

// Config is the resolved set of options the acquisition pipeline runs
// with, after flag parsing and validation.
type Config struct {
	OutputFile   string // empty means --stdout was selected
	UseStdout    bool
	LogLevel     string
	Compress     string
	OutputFormat OutputFormat
	ProgressBar  bool
}

// Validate enforces the "exactly one of --outputfile or --stdout"
// constraint from the CLI surface.
func (c Config) Validate() error {
	hasFile := c.OutputFile != ""
	if hasFile == c.UseStdout {
		return fmt.Errorf("exactly one of --outputfile or --stdout is required")
	}
	switch c.OutputFormat {
	case OutputFormatLiME, OutputFormatRaw:
	default:
		return fmt.Errorf("unknown --output-format %q", c.OutputFormat)
	}
	return nil
}
