package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sitesctl/internal/cms"
	"sitesctl/pkg/cli/api"
)

func newAuthCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication helpers",
	}

	cmd.AddCommand(withEffect(newAuthStatusCmd(s), effectRead))
	cmd.AddCommand(withEffect(newAuthSetTokenCmd(), effectLocal))
	return cmd
}

// authStatus is the session summary printed by auth status.
type authStatus struct {
	Server    string     `json:"server"`
	User      string     `json:"user"`
	AuthMode  string     `json:"auth_mode"`
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func newAuthStatusCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Connect to the server and show the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := s.newService(os.Stderr)
			if err != nil {
				return err
			}
			info, err := svc.Login(cmd.Context())
			if err != nil {
				return err
			}

			st := authStatus{Server: info.ServerURL, User: info.User, AuthMode: info.AuthMode}
			if s.token != "" {
				if tok, err := cms.ParseToken(s.token); err == nil {
					st.Subject = tok.Subject
					st.Issuer = tok.Issuer
					if !tok.ExpiresAt.IsZero() {
						exp := tok.ExpiresAt.UTC()
						st.ExpiresAt = &exp
					}
				}
			}

			if getOutputFormat(cmd) == "json" {
				return api.PrintJSON(os.Stdout, st)
			}
			rows := [][]string{
				{"server", st.Server},
				{"user", st.User},
				{"auth", st.AuthMode},
			}
			if st.ExpiresAt != nil {
				rows = append(rows, []string{"expires", st.ExpiresAt.Format(time.RFC3339)})
			}
			api.PrintTable(os.Stdout, []string{"field", "value"}, rows)
			return nil
		},
	}
}

func newAuthSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <token>",
		Short: "Save a bearer token to the active profile",
		Long:  "Check that the token is a JWT that has not expired and save it to the active profile.",
		Example: `  # Save a token issued by the server's identity provider
  sitesctl auth set-token "$(cat token.txt)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := cms.ParseToken(args[0])
			if err != nil {
				return err
			}
			if tok.Expired(time.Now()) {
				return fmt.Errorf("token expired at %s", tok.ExpiresAt.Format(time.RFC3339))
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = emptyUserConfig()
			}
			name := cfg.CurrentProfile
			if name == "" {
				name = "default"
				cfg.CurrentProfile = name
			}
			p := cfg.Profiles[name]
			p.Token = args[0]
			cfg.Profiles[name] = p
			if err := SaveUserConfig(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return api.PrintJSON(os.Stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"subject": tok.Subject,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Token for %q saved to profile %q\n", tok.Subject, name)
			return nil
		},
	}
}
