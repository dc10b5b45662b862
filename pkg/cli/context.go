package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func contextCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "Summarize the stored history of a session",
		ArgsUsage: "<session-id>",
		Flags:     append(globalFlags(cfg), embeddingFlags(cfg)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = setupLogger(ctx, cfg)

			sessionID := c.Args().First()
			if sessionID == "" {
				return goerr.New("session-id argument is required")
			}

			uc, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}

			summary := uc.GetSessionContext(ctx, sessionID)

			fmt.Printf("Session:  %s\n", summary.SessionID)
			fmt.Printf("Messages: %d\n", summary.MessageCount)
			fmt.Printf("Domains:  %s\n", strings.Join(summary.Domains, ", "))
			fmt.Printf("Tags:     %s\n", strings.Join(summary.CommonTags, ", "))
			if summary.LastActivity > 0 {
				fmt.Printf("Last:     %s\n", time.UnixMilli(summary.LastActivity).Format(time.RFC3339))
			}

			return nil
		},
	}
}
