package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rlch/ogm"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Install or drop the constraints and indexes derived from model definitions",
		Commands: []*cli.Command{
			{
				Name:   "install",
				Usage:  "Create all constraints and indexes in one transaction",
				Flags:  connectionFlags(),
				Action: runSchemaInstall,
			},
			{
				Name:   "drop",
				Usage:  "Drop all constraints and indexes in one transaction",
				Flags:  connectionFlags(),
				Action: runSchemaDrop,
			},
			{
				Name:  "plan",
				Usage: "Print the statements install (or drop) would run without connecting",
				Flags: append(connectionFlags(), &cli.BoolFlag{
					Name:  "drop",
					Usage: "print drop statements instead",
				}),
				Action: runSchemaPlan,
			},
		},
	}
}

func runSchemaInstall(ctx context.Context, cmd *cli.Command) error {
	client, cleanup, err := openClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stmts := client.Migrator().InstallStatements()

	err = client.Migrator().Install(ctx)
	if err != nil {
		return err
	}

	styles := stylesFor(os.Stdout)
	fmt.Fprintln(os.Stdout, styles.Create.Render(fmt.Sprintf("installed %d statement(s)", len(stmts))))

	return nil
}

func runSchemaDrop(ctx context.Context, cmd *cli.Command) error {
	client, cleanup, err := openClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stmts := client.Migrator().DropStatements()

	err = client.Migrator().Drop(ctx)
	if err != nil {
		return err
	}

	styles := stylesFor(os.Stdout)
	fmt.Fprintln(os.Stdout, styles.Drop.Render(fmt.Sprintf("dropped %d statement(s)", len(stmts))))

	return nil
}

func runSchemaPlan(_ context.Context, cmd *cli.Command) error {
	client, err := offlineClient(cmd)
	if err != nil {
		return err
	}

	drop := cmd.Bool("drop")
	writePlan(os.Stdout, stylesFor(os.Stdout), planFor(client, drop), drop)

	return nil
}

func writePlan(w io.Writer, styles *Styles, stmts []string, drop bool) {
	symbol, style := styles.SymbolCreate, styles.Create
	if drop {
		symbol, style = styles.SymbolDrop, styles.Drop
	}

	if len(stmts) == 0 {
		fmt.Fprintln(w, styles.Dim.Render("nothing to do"))

		return
	}

	for _, s := range stmts {
		fmt.Fprintf(w, "%s %s;\n", style.Render(symbol), s)
	}

	fmt.Fprintln(w, styles.Dim.Render(fmt.Sprintf("%d statement(s)", len(stmts))))
}

// planFor returns the statements install, or drop, would run.
func planFor(client *ogm.Client, drop bool) []string {
	if drop {
		return client.Migrator().DropStatements()
	}

	return client.Migrator().InstallStatements()
}
