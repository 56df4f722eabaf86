package cli

import (
	"os"

	"github.com/spf13/cobra"

	"sitesctl/internal/service"
	"sitesctl/pkg/cli/api"
)

func newAssetsCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Query assets",
	}
	cmd.AddCommand(withEffect(newAssetsListCmd(s), effectRead))
	return cmd
}

func newAssetsListCmd(s *settings) *cobra.Command {
	var (
		in   service.AssetListInput
		urls bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets grouped by type",
		Long: `List the assets matching the repository, collection, channel and query
filters. Without --urls the assets are grouped by type with their sizes; with
--urls each asset's management URL is printed, plus its delivery URL when the
channel has a token and the asset is published.`,
		Example: `  sitesctl assets list --repository Marketing --collection Spring
  sitesctl assets list --channel web --query 'type eq "Blog"' --urls
  sitesctl assets list --repository Marketing --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOut := getOutputFormat(cmd) == "json"
			progress := os.Stdout
			if jsonOut {
				progress = os.Stderr
			}
			svc, err := s.newService(progress)
			if err != nil {
				return err
			}
			listing, err := svc.ListAssets(cmd.Context(), in)
			if err != nil {
				return err
			}
			if jsonOut {
				return api.PrintJSON(os.Stdout, listing)
			}
			svc.ReportAssets(listing, urls)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Repository, "repository", "r", "", "Repository name")
	cmd.Flags().StringVarP(&in.Collection, "collection", "c", "", "Collection name (requires --repository)")
	cmd.Flags().StringVar(&in.Channel, "channel", "", "Channel name")
	cmd.Flags().StringVarP(&in.Query, "query", "q", "", "Additional query expression")
	cmd.Flags().BoolVar(&urls, "urls", false, "Print asset URLs instead of the size table")

	return cmd
}
