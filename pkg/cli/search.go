package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kevin-biot/mcp-memory/pkg/model"
	"github.com/kevin-biot/mcp-memory/pkg/usecase/memory"
)

func searchCommand(cfg *config) *cli.Command {
	var (
		kind        string
		limit       int64
		sessionID   string
		environment string
		domain      string
	)

	flags := append(globalFlags(cfg), embeddingFlags(cfg)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "kind",
			Aliases:     []string{"k"},
			Usage:       "Record kind to search (conversation or operational)",
			Value:       string(model.KindConversation),
			Destination: &kind,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       5,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Restrict conversation search to one session",
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "env",
			Usage:       "Restrict operational search to one environment tier",
			Destination: &environment,
		},
		&cli.StringFlag{
			Name:        "filter-domain",
			Usage:       "Restrict operational search to one owning domain",
			Destination: &domain,
		},
	)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search stored memories by similarity",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = setupLogger(ctx, cfg)

			query := c.Args().First()

			uc, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " searching..."
			sp.Start()

			var results []*model.SearchResult
			switch model.RecordKind(kind) {
			case model.KindConversation:
				results = uc.SearchConversations(ctx, query, int(limit), memory.ConversationFilter{
					SessionID: sessionID,
				})
			case model.KindOperational:
				env := model.Environment(environment)
				if env != "" {
					if err := env.Validate(); err != nil {
						sp.Stop()
						return err
					}
				}
				results = uc.SearchOperational(ctx, query, int(limit), memory.OperationalFilter{
					Environment: env,
					Domain:      domain,
				})
			default:
				sp.Stop()
				return goerr.New("unknown kind", goerr.V("kind", kind))
			}
			sp.Stop()

			if len(results) == 0 {
				fmt.Println("No matching memories found.")
				return nil
			}

			for i, res := range results {
				fmt.Printf("%d. [%s] similarity=%.3f\n", i+1, res.Kind, 1-res.Distance)
				fmt.Printf("   %s\n", res.Content)
				if len(res.Metadata) > 0 {
					fmt.Printf("   metadata: %v\n", res.Metadata)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
