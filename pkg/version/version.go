// Package version holds build metadata injected through -ldflags and the
// command that prints it.
//
// Example build:
//
//	go build -ldflags "-X github.com/toozej/spotifyclone/pkg/version.Version=v1.2.3 \
//	    -X github.com/toozej/spotifyclone/pkg/version.Commit=$(git rev-parse HEAD)"
package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata. Overridden at link time.
var (
	Version = "local"
	Commit  = ""
	Branch  = ""
	BuiltAt = ""
	Builder = ""
)

// Info is the structured form of the build metadata.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Branch  string `json:"branch"`
	BuiltAt string `json:"builtAt"`
	Builder string `json:"builder"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Branch:  Branch,
		BuiltAt: BuiltAt,
		Builder: Builder,
	}
}

// Command returns the `version` subcommand.
func Command() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := Get()
			if asJSON {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode version info: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nCommit: %s\nBranch: %s\nBuiltAt: %s\nBuilder: %s\n",
				info.Version, info.Commit, info.Branch, info.BuiltAt, info.Builder)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}
