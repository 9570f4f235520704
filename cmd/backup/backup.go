// cmd/backup/backup.go

package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netbootworks/ztpctl/pkg/backup"
	"github.com/netbootworks/ztpctl/pkg/interaction"
	"github.com/netbootworks/ztpctl/pkg/shared"
	"github.com/netbootworks/ztpctl/pkg/ztp_cli"
	"github.com/netbootworks/ztpctl/pkg/ztp_err"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
)

var (
	flagBackupDir  string
	flagConfigDir  string
	flagQuadletDir string
	flagYes        bool
)

// BackupCmd groups the backup operations.
var BackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore installation backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Archive the current installation",
	RunE: ztp_cli.Wrap(func(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		mgr := backup.NewManager(flagBackupDir)
		archive, err := mgr.Create(rc, []string{configDir(), quadletDir()})
		if err != nil {
			return err
		}
		fmt.Printf("Backup created: %s (%d trees)\n", archive.Timestamp, len(archive.Manifest.Paths))
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups, most recent first",
	RunE: ztp_cli.Wrap(func(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		mgr := backup.NewManager(flagBackupDir)
		timestamps, err := mgr.List(rc.Ctx)
		if err != nil {
			return err
		}
		if len(timestamps) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		for _, ts := range timestamps {
			fmt.Println(ts)
		}
		return nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore [timestamp]",
	Short: "Restore a backup over the current installation",
	Long: `Restore replaces the current installation with the named backup. The
target directories are emptied first; nothing is merged. Without a
timestamp the most recent backup is restored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: ztp_cli.Wrap(func(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		timestamp := ""
		if len(args) > 0 {
			timestamp = args[0]
		}

		mgr := backup.NewManager(flagBackupDir)
		archive, err := mgr.Load(rc.Ctx, timestamp)
		if err != nil {
			return err
		}

		if !flagYes {
			prompt := fmt.Sprintf("Replace the current installation with backup %s?", archive.Timestamp)
			if !interaction.PromptYesNo(prompt, false) {
				return ztp_err.NewUserError("restore cancelled")
			}
		}
		if err := mgr.Restore(rc, archive.Timestamp); err != nil {
			return err
		}
		fmt.Printf("Restored backup %s\n", archive.Timestamp)
		return nil
	}),
}

func configDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	return shared.DefaultConfigDir
}

func quadletDir() string {
	if flagQuadletDir != "" {
		return flagQuadletDir
	}
	return shared.DefaultQuadletDir
}

func init() {
	BackupCmd.PersistentFlags().StringVar(&flagBackupDir, "backup-dir", "", "backup archive directory")
	BackupCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "installation directory")
	BackupCmd.PersistentFlags().StringVar(&flagQuadletDir, "quadlet-dir", "", "quadlet unit directory")
	restoreCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")

	BackupCmd.AddCommand(createCmd)
	BackupCmd.AddCommand(listCmd)
	BackupCmd.AddCommand(restoreCmd)
}
