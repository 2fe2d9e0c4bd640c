// Package kwlog is a thin zerolog factory shared by the manager and
// storager processes, grounded on cuemby-warren's pkg/log component-logger
// shape but trimmed to what a single-binary CLI needs: one logger per
// process, tagged with its component name.
package kwlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with component, writing console-formatted
// output to w (os.Stdout if nil).
func New(component string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
