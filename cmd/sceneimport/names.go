package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scene-importer/internal/names"
)

func init() {
	rootCmd.AddCommand(newNamesCmd())
}

func newNamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names <csv>...",
		Short: "Seed the asset name database from hash,name CSV files",
		Long: `The names command loads "hash,name" rows (hexadecimal hashes) into the
AssetNameCache table of the SQLite database given by --names-db. Existing
hashes are replaced.

Example:
  sceneimport names bones.csv materials.csv --names-db names.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nameDB == "" {
				return fmt.Errorf("--names-db is required")
			}
			return runNames(nameDB, args)
		},
	}
	return cmd
}

func runNames(dbPath string, csvPaths []string) error {
	db, err := names.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, p := range csvPaths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		entries, err := names.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if err := db.Insert(entries); err != nil {
			return err
		}
		fmt.Printf("%s: %d names\n", p, len(entries))
	}

	n, err := db.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Database %s: %d names\n", dbPath, n)
	return nil
}
