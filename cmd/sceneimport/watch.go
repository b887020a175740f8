package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"scene-importer/internal/config"
	"scene-importer/internal/export"
	"scene-importer/internal/preview"
	"scene-importer/internal/watch"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	var outputDir string
	var withPreview bool
	var ext string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-import scene files whenever they change",
		Long: `The watch command monitors a directory tree and imports each scene file
once writes to it settle, writing JSON (and optionally a preview) to the output
directory. Stop it with Ctrl-C.

Example:
  sceneimport watch assets --out build --preview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], ext, config.Flags{OutputDir: outputDir, Preview: withPreview})
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: imported)")
	cmd.Flags().BoolVar(&withPreview, "preview", false, "Also write a WebP thumbnail per scene")
	cmd.Flags().StringVar(&ext, "ext", ".scnb", "Scene file extension to watch")
	return cmd
}

func runWatch(dir, ext string, flags config.Flags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	w, err := watch.New(dir, ext, watch.DefaultDebounce, s.log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := &export.JSONWriter{Dir: cfg.OutputDir}
	s.log.Info("watching", "dir", dir, "ext", ext, "out", cfg.OutputDir)
	return w.Run(ctx, func(path string) {
		res, err := s.importer.ImportFile(path)
		if err != nil {
			s.log.Error("import failed", "file", path, "err", err)
			return
		}
		if err := out.Consume(res.Scene); err != nil {
			s.log.Error("export failed", "file", path, "err", err)
			return
		}
		if cfg.Preview {
			img := preview.Render(res.Scene, previewOptions(cfg))
			thumb := filepath.Join(cfg.OutputDir, res.Scene.Name()+".webp")
			if err := preview.WriteWebP(thumb, img); err != nil {
				s.log.Error("preview failed", "file", path, "err", err)
			}
		}
		s.log.Info(res.Summary(), "file", path, "import", res.ImportID)
	})
}
