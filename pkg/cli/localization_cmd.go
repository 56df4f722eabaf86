package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sitesctl/internal/service"
)

func newLocalizationPolicyCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "localization-policy",
		Aliases: []string{"lp"},
		Short:   "Manage localization policies",
	}
	cmd.AddCommand(withEffect(newLocalizationPolicyCreateCmd(s), effectMutate))
	return cmd
}

func newLocalizationPolicyCreateCmd(s *settings) *cobra.Command {
	var (
		in       service.CreateLocalizationPolicyInput
		required []string
		optional []string
	)

	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "Create a localization policy",
		Example: `  sitesctl localization-policy create Global --required-languages en-US,de-DE --default-language en-US --optional-languages fr-FR`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			in.RequiredLanguages = splitList(required)
			in.OptionalLanguages = splitList(optional)
			return runWorkflow(cmd, s, func(ctx context.Context, svc *service.AssetService) error {
				_, err := svc.CreateLocalizationPolicy(ctx, in)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&in.Description, "description", "", "Policy description")
	cmd.Flags().StringSliceVar(&required, "required-languages", nil, "Comma-separated required languages (required)")
	cmd.Flags().StringVar(&in.DefaultLanguage, "default-language", "", "Default language (required)")
	cmd.Flags().StringSliceVar(&optional, "optional-languages", nil, "Comma-separated optional languages")
	_ = cmd.MarkFlagRequired("required-languages")
	_ = cmd.MarkFlagRequired("default-language")

	return cmd
}
