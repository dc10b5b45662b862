package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kevin-biot/mcp-memory/pkg/model"
)

func reportCommand(cfg *config) *cli.Command {
	var (
		input       string
		incidentID  string
		environment string
		symptoms    []string
	)

	flags := append(globalFlags(cfg), embeddingFlags(cfg)...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the incident report",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "incident",
			Usage:       "Incident ID (generated when omitted)",
			Destination: &incidentID,
		},
		&cli.StringFlag{
			Name:        "env",
			Aliases:     []string{"e"},
			Usage:       "Environment tier (dev, test, staging, prod)",
			Destination: &environment,
		},
		&cli.StringSliceFlag{
			Name:        "symptom",
			Aliases:     []string{"s"},
			Usage:       "Observed symptom (repeatable)",
			Destination: &symptoms,
		},
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Store an operational incident report",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = setupLogger(ctx, cfg)

			rec := &model.OperationalRecord{
				IncidentID:  incidentID,
				Symptoms:    symptoms,
				Environment: model.Environment(environment),
			}

			if input != "" {
				raw, err := os.ReadFile(input)
				if err != nil {
					return goerr.Wrap(err, "failed to read input file", goerr.V("path", input))
				}
				if err := json.Unmarshal(raw, rec); err != nil {
					return goerr.Wrap(err, "failed to parse incident report", goerr.V("path", input))
				}
			}

			if rec.IncidentID == "" {
				rec.IncidentID = uuid.New().String()
			}

			uc, err := cfg.newMemory(ctx)
			if err != nil {
				return err
			}

			stored, err := uc.StoreOperational(ctx, rec)
			if err != nil {
				return err
			}

			fmt.Printf("stored %s (tags: %v)\n", stored.MemoryID(), stored.Tags)
			return nil
		},
	}
}
