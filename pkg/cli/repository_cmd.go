package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"sitesctl/internal/service"
)

func newRepositoryCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repository",
		Aliases: []string{"repo"},
		Short:   "Manage repositories",
	}

	cmd.AddCommand(withEffect(newRepositoryCreateCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newRepositoryControlCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newRepositoryShareCmd(s), effectMutate))
	cmd.AddCommand(withEffect(newRepositoryUnshareCmd(s), effectMutate))

	return cmd
}

func newRepositoryCreateCmd(s *settings) *cobra.Command {
	var (
		description     string
		defaultLanguage string
		types           []string
		channels        []string
	)

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a repository",
		Example: `  sitesctl repository create Marketing --types Blog,News --channels web`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				_, err := svc.CreateRepository(ctx, service.CreateRepositoryInput{
					Name:            args[0],
					Description:     description,
					DefaultLanguage: defaultLanguage,
					ContentTypes:    splitList(types),
					Channels:        splitList(channels),
				})
				return err
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Repository description")
	cmd.Flags().StringVar(&defaultLanguage, "default-language", "en-US", "Default language of the repository")
	cmd.Flags().StringSliceVar(&types, "types", nil, "Comma-separated content types to add")
	cmd.Flags().StringSliceVar(&channels, "channels", nil, "Comma-separated channels to add")

	return cmd
}

func membershipActionNames() []string {
	names := make([]string, len(service.MembershipActions))
	for i, a := range service.MembershipActions {
		names[i] = string(a)
	}
	return names
}

func newRepositoryControlCmd(s *settings) *cobra.Command {
	var (
		repositories []string
		types        []string
		channels     []string
		taxonomies   []string
	)

	cmd := &cobra.Command{
		Use:   "control <action>",
		Short: "Add or remove content types, channels or taxonomies of repositories",
		Long: "Apply a membership action to one or more repositories. Actions: " +
			strings.Join(membershipActionNames(), ", ") + ".",
		Example: `  sitesctl repository control add-type --repository Marketing,Sales --types Blog
  sitesctl repository control remove-channel --repository Marketing --channels web
  sitesctl repository control add-taxonomy --repository Marketing --taxonomies Products`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: membershipActionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := service.ParseMembershipAction(args[0])
			if err != nil {
				return err
			}
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.ControlRepository(ctx, service.ControlRepositoryInput{
					Action:       action,
					Repositories: splitList(repositories),
					ContentTypes: splitList(types),
					Channels:     splitList(channels),
					Taxonomies:   splitList(taxonomies),
				})
			})
		},
	}

	cmd.Flags().StringSliceVarP(&repositories, "repository", "r", nil, "Comma-separated repositories to change (required)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "Comma-separated content types")
	cmd.Flags().StringSliceVar(&channels, "channels", nil, "Comma-separated channels")
	cmd.Flags().StringSliceVar(&taxonomies, "taxonomies", nil, "Comma-separated taxonomies")
	_ = cmd.MarkFlagRequired("repository")

	return cmd
}

func newRepositoryShareCmd(s *settings) *cobra.Command {
	var (
		f        shareFlags
		types    bool
		typeRole string
	)

	cmd := &cobra.Command{
		Use:   "share <name>",
		Short: "Grant users and groups a role on a repository",
		Example: `  sitesctl repository share Marketing --users alice,bob --role contributor
  sitesctl repository share Marketing --groups editors --role manager --types --type-role viewer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := f.input(args[0])
			in.IncludeTypes = types
			in.TypeRole = typeRole
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.ShareRepository(ctx, in)
			})
		},
	}

	f.register(cmd, true, "Role to grant (manager, contributor, viewer)")
	cmd.Flags().BoolVar(&types, "types", false, "Also share every content type in the repository")
	cmd.Flags().StringVar(&typeRole, "type-role", "", "Role on the content types (defaults to --role)")

	return cmd
}

func newRepositoryUnshareCmd(s *settings) *cobra.Command {
	var (
		f     shareFlags
		types bool
	)

	cmd := &cobra.Command{
		Use:     "unshare <name>",
		Short:   "Remove the access of users and groups to a repository",
		Example: `  sitesctl repository unshare Marketing --users alice --types`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := f.input(args[0])
			in.IncludeTypes = types
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				return svc.UnshareRepository(ctx, in)
			})
		},
	}

	f.register(cmd, false, "")
	cmd.Flags().BoolVar(&types, "types", false, "Also unshare every content type in the repository")

	return cmd
}
