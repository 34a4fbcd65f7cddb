package common

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/common/logging"
)

// ConfigureCommandLineLogging sets up logrus for a command run from a terminal: bare messages on
// standard error, so that standard output only carries results.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&logging.CommandLineFormatter{})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
