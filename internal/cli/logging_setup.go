package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pg-ecdsa/pgev/internal/config"
	"github.com/pg-ecdsa/pgev/internal/logging"
)

// setupLogging builds the run logger from config file, environment, and the
// --debug flag, then attaches it plus a fresh trace ID to the command context.
func setupLogging(cmd *cobra.Command) error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}

	loggingCfg := cfg.Logging
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	output := "stderr"
	if loggingCfg.File != "" {
		output = "file"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := logging.GetOrGenerateTraceID(ctx)

	logger := logging.ComponentLogger(logging.New(logging.Config{
		Level:  loggingCfg.Level,
		Format: loggingCfg.Format,
		Output: output,
		File:   loggingCfg.File,
	}), "cli")
	logger = logger.With().Str("trace_id", traceID).Logger()

	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logging.WithContext(ctx, logger)
	cmd.SetContext(ctx)

	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return nil
}
