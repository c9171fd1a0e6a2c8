package cli

import (
	"io"
)

// InferOptions are the presentation settings of the infer command.
// Everything that shapes the run itself lives in config.Config.
type InferOptions struct {
	// Fresh discards the checkpoint of the configured run ID first.
	Fresh bool
	// JSON prints the result as a JSON document instead of a report.
	JSON bool
	// Debug enables debug logs and lifecycle traces.
	Debug bool
	// Quiet suppresses the banner and system messages.
	Quiet bool
	// Out receives the report. Defaults to stdout.
	Out io.Writer
}
