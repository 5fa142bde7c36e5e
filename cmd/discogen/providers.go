package main

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/models"
)

func newProvidersCmd(g *globals) *cobra.Command {
	var (
		country string
		search  string
		near    string
		lang    string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List catalog institutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			var point *models.GeoPoint
			if near != "" {
				p, err := parsePoint(near)
				if err != nil {
					return err
				}
				point = &p
			}
			if lang == "" {
				lang = cfg.Discovery.Lang
			}

			client, err := openClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Store().Close() }()
			graph := catalog.NewGraph(client)

			var providers []*catalog.Provider
			if country != "" {
				providers, err = graph.ProvidersByCountry(ctx, strings.ToUpper(country), lang)
			} else {
				providers, err = graph.AllProviders(ctx, lang)
			}
			if err != nil {
				return err
			}

			type row struct {
				p        *catalog.Provider
				country  string
				title    string
				distance float64
			}
			var rows []row
			for _, p := range providers {
				ok, err := p.Matches(ctx, search)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				r := row{p: p, distance: math.Inf(1)}
				if r.country, err = p.Country(ctx); err != nil {
					return err
				}
				if r.title, err = p.Title(ctx); err != nil {
					return err
				}
				if point != nil {
					if r.distance, err = p.NearestDistance(ctx, *point); err != nil {
						return err
					}
				}
				rows = append(rows, r)
			}
			if point != nil {
				slices.SortStableFunc(rows, func(a, b row) int {
					switch {
					case a.distance < b.distance:
						return -1
					case a.distance > b.distance:
						return 1
					}
					return 0
				})
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			if len(rows) == 0 {
				fmt.Println("No institutions found.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOUNTRY\tNAME\tDISTANCE")
			for _, r := range rows {
				dist := "-"
				if point != nil && !math.IsInf(r.distance, 1) {
					dist = fmt.Sprintf("%.1f km", r.distance)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.p.EntityID(), r.country, r.title, dist)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "only list institutions of this federation")
	cmd.Flags().StringVarP(&search, "search", "s", "", "keywords that must all occur in the name")
	cmd.Flags().StringVar(&near, "near", "", "sort by distance from lat,lon")
	cmd.Flags().StringVar(&lang, "lang", "", "catalog language (default discovery.lang)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of institutions to show")
	return cmd
}

func parsePoint(s string) (models.GeoPoint, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return models.GeoPoint{}, fmt.Errorf("--near: expected lat,lon, got %q", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("--near latitude: %w", err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("--near longitude: %w", err)
	}
	return models.GeoPoint{Lat: la, Lon: lo}, nil
}
