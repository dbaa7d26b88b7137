// Command movies loads the example models, installs their schema and creates a
// small graph.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rlch/ogm"
	_ "github.com/rlch/ogm/dialects/cypher"
	"go.uber.org/zap"
)

func main() {
	err := run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := ogm.LoadConfig(".")
	if err != nil {
		return err
	}

	client, err := ogm.Open(cfg, ogm.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	err = client.Migrator().Install(ctx)
	if err != nil {
		return err
	}

	keanu, err := client.Merge(ctx, "Actor", map[string]any{"name": "Keanu Reeves", "born": 1964})
	if err != nil {
		return err
	}

	matrix, err := client.Merge(ctx, "Movie", map[string]any{"title": "The Matrix", "released": 1999})
	if err != nil {
		return err
	}

	_, err = keanu.RelateTo(ctx, matrix, "acted_in", map[string]any{"role": "Neo"}, false)
	if err != nil {
		return err
	}

	actors, err := client.All(ctx, "Actor", ogm.Query{Order: []ogm.Order{{Property: "name"}}})
	if err != nil {
		return err
	}

	out, err := actors.ToJSON(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
