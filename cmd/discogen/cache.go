package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/geteduroam/discogen/pkg/catapi"
)

func newCacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			s, err := catapi.NewStore(ctx, cfg.StoreConfig())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			entries, err := s.Entries(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backend: %s\nEntries: %d\nTTL:     %s\n", cfg.Cache.Backend, entries, cfg.Catalog.CacheTTL)
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			s, err := catapi.NewStore(ctx, cfg.StoreConfig())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if expiredOnly {
				n, err := s.Prune(ctx, time.Now().Add(-cfg.Catalog.CacheTTL))
				if err != nil {
					return err
				}
				fmt.Printf("%d expired cache entries cleared.\n", n)
				return nil
			}
			if err := s.Clear(ctx); err != nil {
				return err
			}
			fmt.Println("All cache entries cleared.")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
