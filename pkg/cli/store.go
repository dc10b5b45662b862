package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kevin-biot/mcp-memory/pkg/model"
)

func storeCommand(cfg *config) *cli.Command {
	var (
		sessionID string
		userMsg   string
		assistant string
		tags      []string
		noExtract bool
	)

	flags := append(globalFlags(cfg), embeddingFlags(cfg)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "session",
			Aliases:     []string{"s"},
			Usage:       "Session ID the exchange belongs to",
			Required:    true,
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User message",
			Required:    true,
			Destination: &userMsg,
		},
		&cli.StringFlag{
			Name:        "assistant",
			Aliases:     []string{"a"},
			Usage:       "Assistant response",
			Required:    true,
			Destination: &assistant,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Additional tag (repeatable)",
			Destination: &tags,
		},
		&cli.BoolFlag{
			Name:        "no-extract",
			Usage:       "Disable automatic tag and context extraction",
			Destination: &noExtract,
		},
	)

	return &cli.Command{
		Name:  "store",
		Usage: "Store a conversational exchange",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = setupLogger(ctx, cfg)

			uc, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}

			stored, err := uc.StoreConversation(ctx, &model.ConversationRecord{
				SessionID:         sessionID,
				UserMessage:       userMsg,
				AssistantResponse: assistant,
				Tags:              tags,
			}, !noExtract)
			if err != nil {
				return err
			}

			fmt.Printf("stored %s (tags: %v)\n", stored.MemoryID(), stored.Tags)
			return nil
		},
	}
}
