package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/config"
	"github.com/geteduroam/discogen/pkg/discovery"
	"github.com/geteduroam/discogen/pkg/history"
	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/metrics"
	"github.com/geteduroam/discogen/pkg/models"
	"github.com/geteduroam/discogen/pkg/seq"
)

func newGenerateCmd(g *globals) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate discovery documents and publish them when they changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			return generate(ctx, cfg, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "publish a new sequence number even without changes")
	return cmd
}

func generate(ctx context.Context, cfg *config.Config, force bool) error {
	log := logging.FromContext(ctx)
	started := time.Now()

	overrides, err := cfg.Discovery.Overrides()
	if err != nil {
		return err
	}

	client, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Store().Close() }()

	graph := catalog.NewGraph(client)
	builder := discovery.NewProfileBuilder(client.Base(), cfg.Catalog.EdgeURL, overrides)

	var strategies []discovery.Strategy
	for _, v := range cfg.Discovery.Versions {
		switch v {
		case 1:
			strategies = append(strategies, discovery.NewV1(graph, builder, overrides, cfg.Discovery.Countries, cfg.Discovery.Lang))
		case 2:
			strategies = append(strategies, discovery.NewV2(graph, builder, overrides, cfg.Discovery.Countries, cfg.Discovery.Languages))
		}
	}

	writer := discovery.NewWriter(afero.NewOsFs(), cfg.Output.Dir, discovery.WithBrotli(cfg.Output.Brotli))
	publisher := discovery.NewPublisher(seq.New(cfg.Output.CounterFile), writer, strategies, discovery.WithForce(force))

	res, err := publisher.Publish(ctx)
	stats := client.Stats()
	printStats(stats)
	if err != nil {
		return err
	}

	if res.Published() {
		fmt.Printf("Published sequence %d (previous %d)\n", res.Seq, res.PreviousSeq)
	} else {
		fmt.Printf("No changes, sequence stays at %d\n", res.Seq)
	}

	rec := models.RunRecord{
		StartedAt:       started,
		FinishedAt:      time.Now(),
		PreviousSeq:     res.PreviousSeq,
		Seq:             res.Seq,
		Changed:         res.Changed,
		Forced:          res.Forced,
		Versions:        joinVersions(cfg.Discovery.Versions),
		Instances:       res.Instances,
		Requests:        stats.Requests,
		NetworkRequests: stats.NetworkRequests,
	}

	if cfg.History.DBPath != "" {
		ledger, err := history.New(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if err := ledger.Record(ctx, &rec); err != nil {
			return err
		}
		log.Debug("run recorded", zap.String("id", rec.ID))
		if cfg.History.Retention > 0 {
			n, err := ledger.Cleanup(ctx, started.Add(-cfg.History.Retention))
			if err != nil {
				return err
			}
			log.Debug("old runs removed", zap.Int64("count", n))
		}
	}

	if cfg.Metrics.Textfile != "" {
		m := metrics.New()
		m.ObserveRun(rec)
		entries, err := client.Store().Entries(ctx)
		if err != nil {
			return err
		}
		m.ObserveCache(models.CacheStats{Backend: cfg.Cache.Backend, Entries: entries})
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}
	return nil
}

func printStats(s models.FetchStats) {
	fmt.Printf("Total requests: %d\n", s.Requests)
	fmt.Printf("Cache hits:     %d\n", s.CacheHits())
	fmt.Printf("Network hits:   %d\n", s.NetworkRequests)
}

func joinVersions(versions []int) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
