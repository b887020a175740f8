package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scene-importer/internal/container"
	"scene-importer/internal/format"
	"scene-importer/internal/importer"
	"scene-importer/internal/logging"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List a scene file's header and chunk directory",
		Long: `The inspect command prints the container header and every directory entry
without decoding payloads. With --decode it also runs a full import and reports
scene statistics, warnings and dropped submeshes.

Example:
  sceneimport inspect hero.scnb
  sceneimport inspect hero.scnb --decode --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(os.Stdout, args[0], decode, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "Also import the file and report the result")
	return cmd
}

type chunkInfo struct {
	Index            int    `json:"index"`
	Tag              string `json:"tag"`
	Offset           uint64 `json:"offset"`
	Length           uint64 `json:"length"`
	Compressed       bool   `json:"compressed"`
	UncompressedSize uint64 `json:"uncompressed_size"`
}

type inspectReport struct {
	File     string      `json:"file"`
	Size     int         `json:"size"`
	Version  uint32      `json:"version"`
	Chunks   []chunkInfo `json:"chunks"`
	Summary  string      `json:"summary,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Dropped  []string    `json:"dropped,omitempty"`
}

func runInspect(w io.Writer, path string, decode, asJSON bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := container.Parse(data, container.DefaultLimits())
	if err != nil {
		return err
	}

	rep := inspectReport{File: path, Size: len(data), Version: f.Version}
	for _, c := range f.Chunks {
		rep.Chunks = append(rep.Chunks, chunkInfo{
			Index:            c.Index,
			Tag:              c.Tag.String(),
			Offset:           c.Offset,
			Length:           c.Length,
			Compressed:       c.Compressed,
			UncompressedSize: c.UncompressedSize,
		})
	}

	if decode {
		res, err := importer.New(importer.Options{Logger: logging.Discard()}).Import(path, data)
		if err != nil {
			return err
		}
		rep.Summary = res.Summary()
		for _, wn := range res.Warnings {
			rep.Warnings = append(rep.Warnings, wn.String())
		}
		for _, d := range res.Dropped {
			rep.Dropped = append(rep.Dropped, fmt.Sprintf("%s: %v", d.Chunk, d.Err))
		}
	}

	if asJSON {
		return printJSON(w, rep)
	}

	fmt.Fprintf(w, "File: %s (%d bytes)\n", rep.File, rep.Size)
	fmt.Fprintf(w, "Version: %d, Chunks: %d, Bone tables: %d, Meshes: %d\n",
		rep.Version, len(rep.Chunks), f.Count(format.TagBones), f.Count(format.TagMesh))
	for _, c := range rep.Chunks {
		comp := ""
		if c.Compressed {
			comp = fmt.Sprintf(" lz4 -> %d", c.UncompressedSize)
		}
		fmt.Fprintf(w, "  #%-3d %-4s @%-8d %8d bytes%s\n", c.Index, c.Tag, c.Offset, c.Length, comp)
	}
	if decode {
		fmt.Fprintf(w, "Import: %s\n", rep.Summary)
		for _, s := range rep.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", s)
		}
		for _, s := range rep.Dropped {
			fmt.Fprintf(w, "  dropped: %s\n", s)
		}
	}
	return nil
}
