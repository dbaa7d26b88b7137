// Package main provides the ogm CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	// Register drivers.
	_ "github.com/rlch/ogm/dialects/cypher"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "ogm",
		Version: version,
		Usage:   "Manage graph models, constraints and indexes",
		Commands: []*cli.Command{
			schemaCommand(),
			modelsCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
