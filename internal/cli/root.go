package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultStoreDir is the store directory used when none is given.
const DefaultStoreDir = "neo4j"

// RootOptions holds flags for the command.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "auto"
	DryRun  bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "auto"}

// NewRootCommand creates the doinorm command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "doinorm [store-dir]",
		Short: "Normalize DOI properties in a graph store",
		Long: `Rewrite the "doi" property of every node in a graph store to its bare form.

Values such as "doi:10.1000/xyz" or "http://dx.doi.org/10.1000/xyz" become
"10.1000/xyz". Array values are rewritten element by element. The whole pass
runs in one transaction: either every rewrite is committed or none is.

The store directory defaults to "neo4j" and must contain conf/graph.yaml.

Example:
  doinorm
  doinorm ./graph --dry-run
  doinorm ./graph --format json --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitFailure,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := DefaultStoreDir
			if len(args) == 1 && args[0] != "" {
				dir = args[0]
			}
			return runNormalize(opts, dir, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "report format (text|json|auto)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "scan and report without committing changes")

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
