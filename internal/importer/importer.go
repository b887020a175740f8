// Package importer runs one scene file through the whole pipeline: container
// walk, decompression, skeleton, parallel mesh assembly, name resolution and
// scene assembly.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"scene-importer/internal/codec"
	"scene-importer/internal/container"
	"scene-importer/internal/logging"
	"scene-importer/internal/mesh"
	"scene-importer/internal/names"
	"scene-importer/internal/scene"
)

type Options struct {
	Logger *log.Logger
	// Lookup resolves bone and material hashes. It is wrapped in a names.Cache
	// shared by every import run through the same Importer.
	Lookup names.Lookup
	// Codec replaces the LZ4 block codec.
	Codec   codec.Codec
	Workers int
	Limits  container.Limits

	Epsilon     float64
	MaxWeights  int
	MaxVertices int
	MaxIndices  int
}

type Importer struct {
	opts   Options
	log    *log.Logger
	codec  *codec.Adapter
	lookup names.Lookup
}

func New(opts Options) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Limits.MaxChunkBytes == 0 {
		opts.Limits = container.DefaultLimits()
	}
	im := &Importer{
		opts:  opts,
		log:   opts.Logger,
		codec: codec.New(),
	}
	if im.log == nil {
		im.log = logging.Discard()
	}
	if opts.Codec != nil {
		im.codec = &codec.Adapter{Codec: opts.Codec}
	}
	if opts.Lookup != nil {
		im.lookup = names.NewCache(opts.Lookup)
	}
	return im
}

// Warning is a recoverable problem that did not remove anything from the scene.
type Warning struct {
	Chunk   string
	Message string
}

func (w Warning) String() string {
	if w.Chunk == "" {
		return w.Message
	}
	return w.Chunk + ": " + w.Message
}

// Dropped is a submesh left out of the scene and the reason.
type Dropped struct {
	Chunk string
	Err   error
}

type Result struct {
	// ImportID tags log lines of one run. It is not part of the scene.
	ImportID uuid.UUID
	Scene    *scene.Description
	Warnings []Warning
	Dropped  []Dropped
}

// Summary reports how many submeshes made it into the scene.
func (r *Result) Summary() string {
	imported := 0
	if r.Scene != nil {
		imported = r.Scene.Stats().Submeshes
	}
	return fmt.Sprintf("%d submeshes imported, %d dropped", imported, len(r.Dropped))
}

// ImportFile reads and imports path. The scene is named after the file.
func (im *Importer) ImportFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	base := filepath.Base(path)
	return im.Import(strings.TrimSuffix(base, filepath.Ext(base)), data)
}

func (im *Importer) meshParams(version uint32) mesh.Params {
	return mesh.Params{
		Version:     version,
		Epsilon:     im.opts.Epsilon,
		MaxWeights:  im.opts.MaxWeights,
		MaxVertices: im.opts.MaxVertices,
		MaxIndices:  im.opts.MaxIndices,
	}
}
