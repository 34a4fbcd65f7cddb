package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/cmd/qtools/cmd"
	"github.com/coecms/qtools/internal/common"
	"github.com/coecms/qtools/internal/common/logging"
	"github.com/coecms/qtools/internal/common/pbserrors"
)

func main() {
	common.ConfigureCommandLineLogging()

	// Cancel running PBS commands and requests on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.RootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(err)
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Debug("command failed")
		os.Exit(pbserrors.ExitCode(err))
	}
}
