package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	mcpservice "github.com/kevin-biot/mcp-memory/pkg/service/mcp"
	"github.com/kevin-biot/mcp-memory/pkg/utils/logging"
)

func serveCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the memory tool contract over MCP stdio",
		Flags: append(globalFlags(cfg), embeddingFlags(cfg)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = setupLogger(ctx, cfg)

			uc, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("serving memory tools on stdio",
				"memory_dir", cfg.memoryDir, "domain", cfg.domain, "namespace", cfg.namespace)

			server := mcpservice.New(uc)
			if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil {
				return goerr.Wrap(err, "mcp server terminated")
			}
			return nil
		},
	}
}
