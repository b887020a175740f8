package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"scene-importer/internal/batch"
	"scene-importer/internal/config"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	var outputDir string
	var withPreview bool

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import scene files and write JSON scene descriptions",
		Long: `The import command decodes each scene file and writes <name>.json to the
output directory, plus manifest.json describing the whole run. Submeshes that
fail to decode are dropped and listed; structural errors fail the file.

Example:
  sceneimport import hero.scnb
  sceneimport import assets/*.scnb --out build --preview --names-db names.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args, config.Flags{OutputDir: outputDir, Preview: withPreview})
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: imported)")
	cmd.Flags().BoolVar(&withPreview, "preview", false, "Also write a WebP thumbnail per scene")
	return cmd
}

func runImport(paths []string, flags config.Flags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	fmt.Printf("Files: %d, Workers: %d\n", len(paths), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")
	start := time.Now()

	results := batch.Run(batch.Config{
		Importer:       s.importer,
		OutputDir:      cfg.OutputDir,
		Workers:        cfg.Workers,
		Preview:        cfg.Preview,
		PreviewOptions: previewOptions(cfg),
		Progress:       os.Stdout,
	}, paths)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	manifest := batch.NewManifest(results)
	if jsonOut {
		if err := printJSON(os.Stdout, manifest); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Success {
				fmt.Printf("  %s: %s\n", r.Name, r.Summary)
				for _, d := range r.Dropped {
					fmt.Printf("    dropped %s\n", d)
				}
				continue
			}
			fmt.Printf("  %s: FAILED: %s\n", r.Name, r.Error)
		}
		fmt.Printf("Imported: %d/%d\n", manifest.Imported, len(results))
	}

	if err := batch.WriteManifest(filepath.Join(cfg.OutputDir, "manifest.json"), results); err != nil {
		return err
	}
	if manifest.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", manifest.Failed, len(results))
	}
	return nil
}
