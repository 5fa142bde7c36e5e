package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geteduroam/discogen/pkg/history"
	"github.com/geteduroam/discogen/pkg/seq"
)

func newSeqCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "seq",
		Short: "Show the current sequence number",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}

			counter := seq.New(cfg.Output.CounterFile)
			current, err := counter.Current()
			if err != nil {
				return err
			}
			fmt.Printf("Sequence: %d (%s)\n", current, counter.Path())

			if cfg.History.DBPath == "" {
				return nil
			}
			ledger, err := history.New(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer ledger.Close()
			last, ok, err := ledger.LastPublished(ctx)
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Published: %s\n", last.FinishedAt.Local().Format("2006-01-02T15:04:05"))
			}
			return nil
		},
	}
}
