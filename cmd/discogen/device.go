package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/geteduroam/discogen/pkg/catalog"
)

func newDeviceCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect catalog devices",
	}

	var candidates []string
	guessCmd := &cobra.Command{
		Use:   "guess <user-agent>",
		Short: "Guess the device id for a browser user agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := catalog.GuessDeviceID(strings.Join(args, " "), candidates...)
			fmt.Printf("%s\t%s\n", id, catalog.GroupOf(id))
			return nil
		},
	}
	guessCmd.Flags().StringSliceVar(&candidates, "only", nil, "restrict the guess to these device ids")

	var (
		providerID int
		profileID  int
		lang       string
		links      bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the devices of a profile, grouped by platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Discovery.Lang
			}

			client, err := openClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Store().Close() }()

			provider := catalog.NewGraph(client).Provider(providerID, lang)
			profiles, err := provider.Profiles(ctx)
			if err != nil {
				return err
			}
			var profile *catalog.Profile
			for _, p := range profiles {
				if p.ID() == profileID {
					profile = p
				}
			}
			if profile == nil {
				return &catalog.MissingEntityError{Kind: "profile", ID: fmt.Sprint(profileID), Owner: fmt.Sprintf("Provider %d", providerID)}
			}

			devices, err := profile.Devices(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			header := "GROUP\tID\tNAME\tREDIRECT\tMESSAGE"
			if links {
				header += "\tLINK"
			}
			fmt.Fprintln(w, header)
			for _, group := range catalog.GroupDevices(devices) {
				for _, d := range group.Devices {
					line := fmt.Sprintf("%s\t%s\t%s\t%t\t%s", group.Name, d.ID(), d.Display(), d.IsRedirect(), d.Message())
					if links {
						link, err := d.DownloadLink(ctx)
						if err != nil {
							return err
						}
						line += "\t" + link
					}
					fmt.Fprintln(w, line)
				}
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&providerID, "provider", 0, "catalog institution id")
	listCmd.Flags().IntVar(&profileID, "profile", 0, "catalog profile id")
	listCmd.Flags().StringVar(&lang, "lang", "", "catalog language (default discovery.lang)")
	listCmd.Flags().BoolVar(&links, "links", false, "resolve download links")
	_ = listCmd.MarkFlagRequired("provider")
	_ = listCmd.MarkFlagRequired("profile")

	cmd.AddCommand(guessCmd, listCmd)
	return cmd
}
