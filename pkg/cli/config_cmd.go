package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"sitesctl/pkg/cli/api"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(withEffect(newConfigShowCmd(), effectLocal))
	cmd.AddCommand(withEffect(newConfigSetProfileCmd(), effectLocal))
	cmd.AddCommand(withEffect(newConfigUseProfileCmd(), effectLocal))

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "No configuration found at %s\n", ConfigPath())
				return err
			}
			if !reveal {
				cfg = maskConfig(cfg)
			}
			if getOutputFormat(cmd) == "json" {
				return api.PrintJSON(os.Stdout, cfg)
			}

			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				p := cfg.Profiles[name]
				active := ""
				if name == cfg.CurrentProfile {
					active = "*"
				}
				rows = append(rows, []string{name, active, p.Host, p.Username, p.Password, p.Token, p.Output, p.ProjectDir})
			}
			api.PrintTable(os.Stdout, []string{"profile", "active", "host", "username", "password", "token", "output", "project"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show sensitive values unmasked")

	return cmd
}

// maskConfig returns a copy of the config with sensitive fields masked.
func maskConfig(cfg *UserConfig) *UserConfig {
	masked := &UserConfig{
		CurrentProfile: cfg.CurrentProfile,
		Profiles:       make(map[string]Profile, len(cfg.Profiles)),
	}
	for name, p := range cfg.Profiles {
		p.Password = maskSecret(p.Password)
		p.Token = maskSecret(p.Token)
		masked.Profiles[name] = p
	}
	return masked
}

// maskSecret masks a sensitive string, showing first 4 and last 4 chars.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func newConfigSetProfileCmd() *cobra.Command {
	var (
		name string
		p    Profile
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Example: `  # Point the default profile at a server with basic credentials
  sitesctl config set-profile --name default --host https://cms.example.com --username admin

  # Keep a second profile for a staging server
  sitesctl config set-profile --name staging --host https://staging.example.com --token "$TOKEN"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			flags := cmd.Flags()
			if flags.Changed("host") {
				if err := validateHostURL(p.Host); err != nil {
					return err
				}
			}
			if flags.Changed("output") {
				if err := validateOutputFormat(p.Output); err != nil {
					return err
				}
			}
			if flags.Changed("log-level") {
				if _, err := parseLogLevel(p.LogLevel); err != nil {
					return err
				}
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = emptyUserConfig()
			}

			cur := cfg.Profiles[name]
			set := func(flag string, dst *string, v string) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			set("host", &cur.Host, p.Host)
			set("username", &cur.Username, p.Username)
			set("password", &cur.Password, p.Password)
			set("token", &cur.Token, p.Token)
			set("output", &cur.Output, p.Output)
			set("project", &cur.ProjectDir, p.ProjectDir)
			set("log-level", &cur.LogLevel, p.LogLevel)
			cfg.Profiles[name] = cur

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return api.PrintJSON(os.Stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&p.Host, "host", "", "Server URL")
	cmd.Flags().StringVar(&p.Username, "username", "", "User name for basic authentication")
	cmd.Flags().StringVar(&p.Password, "password", "", "Password for basic authentication")
	cmd.Flags().StringVar(&p.Token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&p.Output, "output", "", "Default output format")
	cmd.Flags().StringVar(&p.ProjectDir, "project", "", "Project directory holding the src tree")
	cmd.Flags().StringVar(&p.LogLevel, "log-level", "", "Default log level")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return api.PrintJSON(os.Stdout, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Active profile set to %q\n", name)
			return nil
		},
	}
}
