package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sitesctl/internal/service"
)

func newTypeCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Share, download and upload content types",
	}

	cmd.AddCommand(withEffect(newTypeShareCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newTypeUnshareCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newTypeDownloadCmd(s), effectRead))
	cmd.AddCommand(withEffect(newTypeUploadCmd(s), effectMutate))

	return cmd
}

func newTypeShareCmd(s *settings) *cobra.Command {
	var f shareFlags

	cmd := &cobra.Command{
		Use:     "share <name>",
		Short:   "Grant users and groups a role on a content type",
		Example: `  sitesctl type share Blog --groups editors --role contributor`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.ShareType(ctx, f.input(args[0]))
			})
		},
	}
	f.register(cmd, true, "Role to grant (manager, contributor, viewer)")
	return cmd
}

func newTypeUnshareCmd(s *settings) *cobra.Command {
	var f shareFlags

	cmd := &cobra.Command{
		Use:   "unshare <name>",
		Short: "Remove the access of users and groups to a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.UnshareType(ctx, f.input(args[0]))
			})
		},
	}
	f.register(cmd, false, "")
	return cmd
}

func newTypeDownloadCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "download <name>[,<name>...]",
		Short: "Save content types and their components into the project",
		Long: `Download the named content types into src/types/<name>/<name>.json and the
custom field editors and forms they use into src/components.`,
		Example: `  sitesctl type download Blog,News --project ./site`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.DownloadTypes(ctx, splitList(args))
			})
		},
	}
}

func newTypeUploadCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <name>[,<name>...]",
		Short: "Create or update content types from the project",
		Long: `Upload the named content types from src/types. Custom field editors and
forms they use are uploaded and published first. Types missing on the server are
created; the others are updated.`,
		Example: `  sitesctl type upload Blog,News --project ./site`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.UploadTypes(ctx, splitList(args))
			})
		},
	}
}
