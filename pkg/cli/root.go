package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"sitesctl/pkg/cli/api"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		reportError(os.Stdout, os.Stderr, output, err)
		return 1
	}
	return 0
}

// reportError renders a command failure: a JSON object on stdout in json
// mode, a structured log record on stderr otherwise.
func reportError(stdout, stderr io.Writer, output string, err error) {
	if output == "json" {
		errObj := map[string]interface{}{
			"error": err.Error(),
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			errObj["http_status"] = apiErr.HTTPStatus
			errObj["code"] = apiErr.Code
		}
		_ = api.PrintJSON(stdout, errObj)
		return
	}

	attrs := []any{"error", err}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "http_status", apiErr.HTTPStatus, "code", apiErr.Code, "request_id", apiErr.RequestID)
	}
	slog.New(slog.NewTextHandler(stderr, nil)).Error("command failed", attrs...)
}

func newRootCmd() *cobra.Command {
	s := newSettings()

	rootCmd := &cobra.Command{
		Use:   "sitesctl",
		Short: "Content server administration CLI",
		Long: `Command-line interface for administering a content server: repositories,
channels, content types, localization policies, permissions and assets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.host, "host", "http://localhost:8080", "Server URL")
	flags.StringVarP(&s.username, "username", "u", "", "User name for basic authentication")
	flags.StringVar(&s.password, "password", "", "Password for basic authentication")
	flags.StringVar(&s.token, "token", "", "Bearer token (takes precedence over basic authentication)")
	flags.StringVarP(&s.output, "output", "o", "table", "Output format (table, json)")
	flags.StringVarP(&s.profile, "profile", "p", "", "Config profile to use")
	flags.StringVar(&s.project, "project", ".", "Project directory holding the src tree")
	flags.StringVar(&s.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Float64Var(&s.rateLimit, "rate-limit", 0, "Maximum requests per second (0 for no limit)")
	flags.IntVar(&s.concurrency, "concurrency", 8, "Maximum concurrent lookups")

	rootCmd.AddCommand(
		withEffect(withResource(newVersionCmd(), resourceCLI), effectLocal),
		withResource(newConfigCmd(), resourceProfile),
		withResource(newAuthCmd(s), resourceSession),
	)

	rootCmd.AddCommand(
		withResource(newRepositoryCmd(s), resourceRepository),
		withResource(newTypeCmd(s), resourceType),
		withResource(newChannelCmd(s), resourceChannel),
		withResource(newLocalizationPolicyCmd(s), resourceLocalizationPolicy),
		withResource(newAssetsCmd(s), resourceAsset),
	)

	// Agent discovery
	rootCmd.AddCommand(withEffect(withResource(newCommandsCmd(), resourceCLI), effectLocal))

	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
