// cmd/inspect/config.go

package inspect

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/netbootworks/ztpctl/pkg/setup"
	"github.com/netbootworks/ztpctl/pkg/snapshot"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/ztp_cli"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
)

var (
	flagConfigDir   string
	flagQuadletDir  string
	flagJSON        bool
	flagShowSecrets bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged configuration and where each value came from",
	Long: `Runs the same source discovery as setup — config.yaml, the env file, the
quadlet fragments, nginx.conf and the system hostname — and prints the
merged result with the winning source per field. Nothing is written.`,
	RunE: ztp_cli.Wrap(runConfig),
}

func init() {
	configCmd.Flags().StringVar(&flagConfigDir, "config-dir", "", "installation directory")
	configCmd.Flags().StringVar(&flagQuadletDir, "quadlet-dir", "", "quadlet unit directory")
	configCmd.Flags().BoolVar(&flagJSON, "json", false, "emit JSON instead of a table")
	configCmd.Flags().BoolVar(&flagShowSecrets, "show-secrets", false, "print secret values in full")
}

type resolvedField struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Source string `json:"source,omitempty"`
}

func runConfig(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	snap := snapshot.New(flagConfigDir, flagQuadletDir)
	setup.Discover(rc, snap)

	var resolved []resolvedField
	for _, field := range sources.AllFields {
		rf := resolvedField{Field: string(field)}
		if kind, ok := snap.Source(field); ok {
			rf.Source = string(kind)
			rf.Value = displayValue(snap, field)
		}
		resolved = append(resolved, rf)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE\tSOURCE")
	for _, rf := range resolved {
		value, source := rf.Value, rf.Source
		if source == "" {
			value, source = "-", "(unresolved)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", rf.Field, value, source)
	}
	return w.Flush()
}

func displayValue(snap *snapshot.Snapshot, field sources.FieldName) string {
	if sources.SecretFields[field] && !flagShowSecrets {
		return snap.Preview(field)
	}
	return snap.Value(field)
}
