package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rlch/ogm"
	"github.com/urfave/cli/v3"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:   "models",
		Usage:  "List defined models with their labels, primary key and relationships",
		Flags:  connectionFlags(),
		Action: runModels,
	}
}

func runModels(_ context.Context, cmd *cli.Command) error {
	client, err := offlineClient(cmd)
	if err != nil {
		return err
	}

	writeModels(os.Stdout, stylesFor(os.Stdout), client.Models().Models())

	return nil
}

func writeModels(w io.Writer, styles *Styles, models []*ogm.Model) {
	for _, m := range models {
		labels := make([]string, len(m.Labels()))
		for i, l := range m.Labels() {
			labels[i] = ":" + l
		}

		fmt.Fprintf(w, "%s %s %s\n",
			styles.Bold.Render(m.Name()),
			styles.Label.Render(strings.Join(labels, "")),
			styles.Dim.Render("key="+m.PrimaryKey()),
		)

		rels := m.Relationships()
		for i, rel := range rels {
			branch := styles.TreeMiddle
			if i == len(rels)-1 {
				branch = styles.TreeEnd
			}

			line := fmt.Sprintf("%s %s %s [%s] %s", branch, rel.Name(), rel.Type(), rel.Relationship(), rel.Direction())
			if rel.Target() != "" {
				line += " " + rel.Target()
			}

			if rel.Eager() {
				line += " " + styles.Dim.Render("eager")
			}

			fmt.Fprintln(w, line)
		}
	}
}
