// Command ops runs offline maintenance against a daybook data
// directory: backups, restores, and the routine schema migration.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"daybook/internal/ops"
	"daybook/internal/routine"
	"daybook/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:           "ops",
		Short:         "Offline maintenance for daybook data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(backupCmd(), restoreCmd(), migrateRoutinesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func backupCmd() *cobra.Command {
	var dataDir, out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory to a .tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				ts := time.Now().UTC().Format("20060102T150405Z")
				out = filepath.Join("backups", "daybook-"+ts+".tar.gz")
			}
			if err := ops.BackupDataDir(dataDir, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "path to data directory")
	cmd.Flags().StringVar(&out, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func restoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			return ops.RestoreDataDir(archive, target)
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	return cmd
}

func migrateRoutinesCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate-routines",
		Short: "Tag legacy routine rows with an explicit schedule mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := routine.MigrateLegacy(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d routines\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "data/daybook.db", "path to the daybook database")
	return cmd
}
