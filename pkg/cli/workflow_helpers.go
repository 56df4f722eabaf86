package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"sitesctl/internal/service"
)

// runWorkflow builds the service for this invocation and runs fn with the
// command's context. Progress is written to stdout.
func runWorkflow(cmd *cobra.Command, s *settings, fn func(ctx context.Context, svc *service.AssetService) error) error {
	svc, err := s.newService(os.Stdout)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), svc)
}

// shareFlags are the principal and role flags shared by share and unshare.
type shareFlags struct {
	users  []string
	groups []string
	role   string
}

func (f *shareFlags) register(cmd *cobra.Command, withRole bool, roleUsage string) {
	cmd.Flags().StringSliceVar(&f.users, "users", nil, "Comma-separated user names")
	cmd.Flags().StringSliceVar(&f.groups, "groups", nil, "Comma-separated group names")
	if withRole {
		cmd.Flags().StringVar(&f.role, "role", "", roleUsage)
		_ = cmd.MarkFlagRequired("role")
	}
}

func (f *shareFlags) input(name string) service.ShareInput {
	return service.ShareInput{
		Name:   name,
		Users:  splitList(f.users),
		Groups: splitList(f.groups),
		Role:   f.role,
	}
}
