package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sitesctl/internal/cms"
	"sitesctl/internal/component"
	"sitesctl/internal/service"
	"sitesctl/internal/typestore"
	"sitesctl/pkg/cli/api"
)

// settings holds the connection options of one invocation, resolved with
// precedence flag > env > profile > default.
type settings struct {
	host        string
	username    string
	password    string
	token       string
	output      string
	profile     string
	project     string
	logLevel    string
	rateLimit   float64
	concurrency int

	logger *slog.Logger
	client *api.Client
	// readPassword prompts on the terminal and returns "" when stdin is not one.
	readPassword func(prompt string) (string, error)
}

func newSettings() *settings {
	return &settings{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		readPassword: terminalPassword,
	}
}

func (s *settings) resolve(cmd *cobra.Command) error {
	cfg, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		cfg = emptyUserConfig()
	}
	p, err := cfg.ActiveProfile(s.profile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	pick := func(flag string, dst *string, env, fromProfile string) {
		if flags.Changed(flag) {
			return
		}
		if v := os.Getenv(env); v != "" {
			*dst = v
		} else if fromProfile != "" {
			*dst = fromProfile
		}
	}
	pick("host", &s.host, "SITESCTL_HOST", p.Host)
	pick("username", &s.username, "SITESCTL_USERNAME", p.Username)
	pick("password", &s.password, "SITESCTL_PASSWORD", p.Password)
	pick("token", &s.token, "SITESCTL_TOKEN", p.Token)
	pick("output", &s.output, "SITESCTL_OUTPUT", p.Output)
	pick("project", &s.project, "SITESCTL_PROJECT", p.ProjectDir)
	pick("log-level", &s.logLevel, "SITESCTL_LOG_LEVEL", p.LogLevel)

	if err := validateOutputFormat(s.output); err != nil {
		return err
	}
	level, err := parseLogLevel(s.logLevel)
	if err != nil {
		return err
	}
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// apiClient returns the HTTP client for the resolved host and credentials,
// prompting for a missing password when a user name is set.
func (s *settings) apiClient() (*api.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	if err := validateHostURL(s.host); err != nil {
		return nil, err
	}
	if s.token == "" && s.username != "" && s.password == "" && s.readPassword != nil {
		pw, err := s.readPassword(fmt.Sprintf("Password for %s: ", s.username))
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		s.password = pw
	}

	c := api.NewClient(s.host, s.username, s.password, s.token)
	c.Logger = s.logger
	c.SetRateLimit(s.rateLimit, 1)
	s.client = c
	return c, nil
}

func (s *settings) projectDir() string {
	if s.project == "" {
		return "."
	}
	return s.project
}

// newService wires the workflows against the server. Progress lines go to
// progress.
func (s *settings) newService(progress io.Writer) (*service.AssetService, error) {
	client, err := s.apiClient()
	if err != nil {
		return nil, err
	}
	projectDir := s.projectDir()
	sourceDir := filepath.Join(projectDir, "src")

	return service.NewAssetService(
		cms.NewClient(client),
		component.NewTransfer(client, projectDir, sourceDir, s.logger),
		typestore.New(sourceDir),
		service.NewReporter(progress),
		s.logger,
		service.Config{
			ServerURL:   s.host,
			SourceDir:   sourceDir,
			ProjectDir:  projectDir,
			Concurrency: s.concurrency,
		},
	), nil
}

func terminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
