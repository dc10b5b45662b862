package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kevin-biot/mcp-memory/pkg/utils/logging"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cfg := &config{}

	cmd := &cli.Command{
		Name:  "mcp-memory",
		Usage: "Dual-backend operational memory store",
		Commands: []*cli.Command{
			serveCommand(cfg),
			storeCommand(cfg),
			reportCommand(cfg),
			searchCommand(cfg),
			contextCommand(cfg),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// setupLogger installs the configured logger as default and into the
// context, after the optional config file has been merged.
func setupLogger(ctx context.Context, cfg *config) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}
