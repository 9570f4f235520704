// cmd/root.go

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	backupcmd "github.com/netbootworks/ztpctl/cmd/backup"
	"github.com/netbootworks/ztpctl/cmd/inspect"
	setupcmd "github.com/netbootworks/ztpctl/cmd/setup"
	"github.com/netbootworks/ztpctl/pkg/logger"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/ztp_err"
)

// RootCmd is the base command for ztpctl.
var RootCmd = &cobra.Command{
	Use:   "ztpctl",
	Short: "Manage the ZTP bootstrap pod",
	Long: `ztpctl installs and reconciles the ZTP bootstrap deployment: a podman pod
serving switch provisioning payloads over nginx with an admin dashboard.
It discovers the configuration a previous install left behind, merges it
with operator input, and regenerates every artifact from one snapshot.`,
	Version:       shared.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	for _, sub := range []*cobra.Command{
		setupcmd.SetupCmd,
		backupcmd.BackupCmd,
		inspect.InspectCmd,
	} {
		RootCmd.AddCommand(sub)
	}
}

// Execute runs the root command and maps the error to the process exit
// code: user errors exit 2, internal errors exit 1.
func Execute() {
	defer shared.SafeSync()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if ztp_err.IsExpectedUserError(err) {
			logger.L().Warn("Command completed with user error", zap.Error(err))
		} else {
			logger.L().Error("Command failed", zap.Error(err))
		}
		os.Exit(ztp_err.ExitCode(err))
	}
}
