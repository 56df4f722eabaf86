package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sitesctl/pkg/cli/api"
)

// Command annotations read by the commands catalog.
const (
	annotationResource = "sitesctl/resource"
	annotationEffect   = "sitesctl/effect"
)

// Resource kinds a command works on.
const (
	resourceRepository         = "repository"
	resourceType               = "type"
	resourceChannel            = "channel"
	resourceLocalizationPolicy = "localization-policy"
	resourceAsset              = "asset"
	resourceSession            = "session"
	resourceProfile            = "profile"
	resourceCLI                = "cli"
)

// Effects of a command. Read commands call the server without changing it,
// mutate commands change server state and local commands never connect.
const (
	effectRead   = "read"
	effectMutate = "mutate"
	effectLocal  = "local"
)

var effects = []string{effectRead, effectMutate, effectLocal}

// withResource tags cmd and its subcommands with the resource kind they act on.
func withResource(cmd *cobra.Command, resource string) *cobra.Command {
	return annotate(cmd, annotationResource, resource)
}

// withEffect tags a runnable command with its effect on the server.
func withEffect(cmd *cobra.Command, effect string) *cobra.Command {
	return annotate(cmd, annotationEffect, effect)
}

func annotate(cmd *cobra.Command, key, value string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[key] = value
	return cmd
}

// CommandEntry describes one runnable sitesctl command.
type CommandEntry struct {
	Path     string      `json:"path"`
	Resource string      `json:"resource"`
	Effect   string      `json:"effect"`
	Short    string      `json:"short"`
	Args     string      `json:"args,omitempty"`
	Aliases  []string    `json:"aliases,omitempty"`
	Flags    []FlagEntry `json:"flags,omitempty"`
}

// FlagEntry describes a local flag of a command.
type FlagEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// RequiredFlags returns the names of the flags that must be set.
func (e CommandEntry) RequiredFlags() []string {
	var out []string
	for _, f := range e.Flags {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func (e CommandEntry) matches(text string) bool {
	text = strings.ToLower(text)
	for _, s := range append([]string{e.Path, e.Short}, e.Aliases...) {
		if strings.Contains(strings.ToLower(s), text) {
			return true
		}
	}
	return false
}

func newCommandsCmd() *cobra.Command {
	var (
		filter   string
		resource string
		effect   string
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the sitesctl workflows by resource and effect",
		Long: `List every runnable command with the resource it acts on, whether it reads
or changes server state, its arguments and its flags. Works offline.`,
		Example: `  # Every command that changes server state
  sitesctl commands --effect mutate

  # Repository workflows as JSON
  sitesctl commands --resource repository --output json

  # Commands about sharing
  sitesctl commands --filter share`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if effect != "" && !slices.Contains(effects, effect) {
				return fmt.Errorf("invalid effect %q: must be one of %s", effect, strings.Join(effects, ", "))
			}

			var entries []CommandEntry
			for _, e := range catalog(cmd.Root()) {
				if resource != "" && e.Resource != resource {
					continue
				}
				if effect != "" && e.Effect != effect {
					continue
				}
				if filter != "" && !e.matches(filter) {
					continue
				}
				entries = append(entries, e)
			}

			if getOutputFormat(cmd) == "json" {
				if entries == nil {
					entries = []CommandEntry{}
				}
				return api.PrintJSON(os.Stdout, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.Resource, e.Effect, e.Args, e.Short})
			}
			api.PrintTable(os.Stdout, []string{"command", "resource", "effect", "args", "description"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command paths, aliases and descriptions")
	cmd.Flags().StringVar(&resource, "resource", "", "Only commands acting on this resource (e.g. repository, type)")
	cmd.Flags().StringVar(&effect, "effect", "", "Only commands with this effect (read, mutate, local)")
	return cmd
}

// catalog lists the runnable commands under root in tree order. Resource
// annotations are inherited from the nearest annotated ancestor.
func catalog(root *cobra.Command) []CommandEntry {
	var entries []CommandEntry
	var walk func(cmd *cobra.Command, resource string)
	walk = func(cmd *cobra.Command, resource string) {
		for _, child := range cmd.Commands() {
			if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
				continue
			}
			res := resource
			if r, ok := child.Annotations[annotationResource]; ok {
				res = r
			}
			if child.HasSubCommands() {
				walk(child, res)
				continue
			}
			_, args, _ := strings.Cut(child.Use, " ")
			entries = append(entries, CommandEntry{
				Path:     strings.TrimPrefix(child.CommandPath(), root.Name()+" "),
				Resource: res,
				Effect:   child.Annotations[annotationEffect],
				Short:    child.Short,
				Args:     strings.TrimSpace(args),
				Aliases:  child.Aliases,
				Flags:    localFlags(child),
			})
		}
	}
	walk(root, "")
	return entries
}

func localFlags(cmd *cobra.Command) []FlagEntry {
	var flags []FlagEntry
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		required := f.Annotations[cobra.BashCompOneRequiredFlag]
		flags = append(flags, FlagEntry{
			Name:     f.Name,
			Type:     f.Value.Type(),
			Default:  f.DefValue,
			Required: len(required) > 0 && required[0] == "true",
		})
	})
	return flags
}
