package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sitesctl/internal/domain"
	"sitesctl/internal/service"
)

func newChannelCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage channels",
	}

	cmd.AddCommand(withEffect(newChannelCreateCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newChannelShareCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newChannelUnshareCmd(s), effectMutate))

	return cmd
}

func newChannelCreateCmd(s *settings) *cobra.Command {
	var in service.CreateChannelInput

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Example: `  sitesctl channel create web
  sitesctl channel create intranet --type secure --publish-policy onlyApproved --localization-policy Global`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				_, err := svc.CreateChannel(ctx, in)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&in.Description, "description", "", "Channel description")
	cmd.Flags().StringVar(&in.ChannelType, "type", domain.ChannelTypePublic, "Channel type (public, secure)")
	cmd.Flags().StringVar(&in.PublishPolicy, "publish-policy", domain.PublishPolicyAnything, "Publish policy (anythingPublished, onlyApproved)")
	cmd.Flags().StringVar(&in.LocalizationPolicy, "localization-policy", "", "Localization policy name")

	return cmd
}

func newChannelShareCmd(s *settings) *cobra.Command {
	var f shareFlags

	cmd := &cobra.Command{
		Use:     "share <name>",
		Short:   "Grant users and groups a role on a channel",
		Example: `  sitesctl channel share web --users alice --role manager`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.ShareChannel(ctx, f.input(args[0]))
			})
		},
	}
	f.register(cmd, true, "Role to grant (manager, contributor)")
	return cmd
}

func newChannelUnshareCmd(s *settings) *cobra.Command {
	var f shareFlags

	cmd := &cobra.Command{
		Use:   "unshare <name>",
		Short: "Remove the access of users and groups to a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.UnshareChannel(ctx, f.input(args[0]))
			})
		},
	}
	f.register(cmd, false, "")
	return cmd
}
