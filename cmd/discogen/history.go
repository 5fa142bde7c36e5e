package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/geteduroam/discogen/pkg/history"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generator runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}

			ledger, err := history.New(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tDURATION\tSEQ\tPUBLISHED\tVERSIONS\tINSTANCES\tREQUESTS\tNETWORK")
			for _, r := range runs {
				published := "no"
				switch {
				case r.Forced:
					published = "forced"
				case r.Changed:
					published = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%d\n",
					r.StartedAt.Local().Format("2006-01-02T15:04:05"), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
					r.Seq, published, r.Versions, r.Instances, r.Requests, r.NetworkRequests)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
