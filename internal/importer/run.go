package importer

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"scene-importer/internal/container"
	"scene-importer/internal/format"
	"scene-importer/internal/mesh"
	"scene-importer/internal/names"
	"scene-importer/internal/scene"
	"scene-importer/internal/skeleton"
)

// job is a chunk queued during the walk for decoding afterwards.
type job struct {
	chunk container.RawChunk
	span  []byte
}

type meshResult struct {
	sub   *mesh.Submesh
	notes []string
	err   error
}

// run is the state of a single import.
type run struct {
	im      *Importer
	log     *log.Logger
	version uint32

	skel          *skeleton.Skeleton
	materials     []scene.MaterialRecord
	haveMaterials bool
	meta          scene.Metadata
	haveMeta      bool

	meshes   []job
	shapes   []job
	warnings []Warning
}

// Import decodes data as a scene called name. Structural problems fail the
// import; a bad submesh is dropped and reported in the Result.
func (im *Importer) Import(name string, data []byte) (*Result, error) {
	id := uuid.New()
	l := im.log.With("import", id.String()[:8], "scene", name)

	f, err := container.Parse(data, im.opts.Limits)
	if err != nil {
		return nil, fmt.Errorf("importer: %s: %w", name, err)
	}
	l.Debug("parsed directory", "version", f.Version, "chunks", len(f.Chunks))

	r := &run{im: im, log: l, version: f.Version}
	skip := func(c container.RawChunk) {
		l.Debug("skipping unknown chunk", "chunk", c)
	}
	if err := f.Walk(r.registry(), skip); err != nil {
		return nil, fmt.Errorf("importer: %s: %w", name, err)
	}

	if r.skel == nil {
		l.Debug("no bone table, importing as a static mesh")
		if r.skel, err = skeleton.Build(nil); err != nil {
			return nil, fmt.Errorf("importer: %s: %w", name, err)
		}
	}
	if !r.haveMaterials {
		r.warn("", "no material table, slot names are synthesized")
	}

	subs, dropped := r.assembleMeshes()
	shapes := r.decodeCollision()

	res := names.NewResolver(im.lookup)
	res.Warn = func(msg string) { r.warn("", msg) }
	desc, err := scene.Assemble(scene.Input{
		Name:      name,
		Metadata:  r.meta,
		Skeleton:  r.skel,
		Materials: r.materials,
		Submeshes: subs,
		Collision: shapes,
		Resolver:  res,
	})
	if err != nil {
		return nil, fmt.Errorf("importer: %d of %d submeshes dropped: %w", len(dropped), len(r.meshes), err)
	}

	st := desc.Stats()
	l.Info("imported", "bones", st.Bones, "lods", st.LODs, "submeshes", st.Submeshes,
		"dropped", len(dropped), "warnings", len(r.warnings))
	return &Result{ImportID: id, Scene: desc, Warnings: r.warnings, Dropped: dropped}, nil
}

func (r *run) registry() *container.Registry {
	reg := container.NewRegistry()
	reg.Register(format.TagBones, container.Entry{Name: "bone table", ProvidesBones: true, Handle: r.handleBones})
	reg.Register(format.TagMaterials, container.Entry{Name: "material table", Handle: r.handleMaterials})
	reg.Register(format.TagMetadata, container.Entry{Name: "metadata", Handle: r.handleMetadata})
	reg.Register(format.TagMesh, container.Entry{Name: "mesh", NeedsBones: true, Handle: queue(&r.meshes)})
	reg.Register(format.TagCollision, container.Entry{Name: "collision", NeedsBones: true, Handle: queue(&r.shapes)})
	return reg
}

func queue(dst *[]job) container.Handler {
	return func(c container.RawChunk, span []byte) error {
		*dst = append(*dst, job{chunk: c, span: span})
		return nil
	}
}

func (r *run) warn(chunk, msg string) {
	r.log.Warn(msg, "chunk", chunk)
	r.warnings = append(r.warnings, Warning{Chunk: chunk, Message: msg})
}

func (r *run) handleBones(c container.RawChunk, span []byte) error {
	if r.skel != nil {
		r.warn(c.String(), "duplicate bone table skipped")
		return nil
	}
	payload, err := r.im.codec.Payload(c, span)
	if err != nil {
		return err
	}
	recs, err := skeleton.Decode(payload, r.version)
	if err != nil {
		return err
	}
	s, err := skeleton.Build(recs)
	if err != nil {
		return err
	}
	if s.HasSyntheticRoot() {
		r.warn(c.String(), fmt.Sprintf("bone table has no single root, inserted %q", skeleton.SyntheticRootName))
	}
	r.skel = s
	return nil
}

func (r *run) handleMaterials(c container.RawChunk, span []byte) error {
	if r.haveMaterials {
		r.warn(c.String(), "duplicate material table skipped")
		return nil
	}
	payload, err := r.im.codec.Payload(c, span)
	if err != nil {
		return err
	}
	if r.materials, err = scene.DecodeMaterials(payload, r.version); err != nil {
		return err
	}
	r.haveMaterials = true
	return nil
}

// handleMetadata never fails the import.
func (r *run) handleMetadata(c container.RawChunk, span []byte) error {
	if r.haveMeta {
		r.warn(c.String(), "duplicate metadata skipped")
		return nil
	}
	payload, err := r.im.codec.Payload(c, span)
	if err == nil {
		r.meta, err = scene.DecodeMetadata(payload, r.version)
	}
	if err != nil {
		r.warn(c.String(), "metadata skipped: "+err.Error())
		return nil
	}
	r.haveMeta = true
	return nil
}

// assembleMeshes decodes every queued mesh chunk on a worker pool. Each
// worker writes only its own result slot; results are merged in directory order.
func (r *run) assembleMeshes() ([]*mesh.Submesh, []Dropped) {
	params := r.im.meshParams(r.version)
	params.Skeleton = r.skel
	results := make([]meshResult, len(r.meshes))

	workers := min(r.im.opts.Workers, len(r.meshes))
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.assembleMesh(r.meshes[idx], params)
			}
		}()
	}

	for i := range r.meshes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var subs []*mesh.Submesh
	var dropped []Dropped
	for i, res := range results {
		chunk := r.meshes[i].chunk.String()
		if res.err != nil {
			r.log.Warn("dropped submesh", "chunk", chunk, "err", res.err)
			dropped = append(dropped, Dropped{Chunk: chunk, Err: res.err})
			continue
		}
		for _, n := range res.notes {
			r.warn(chunk, n)
		}
		subs = append(subs, res.sub)
	}
	return subs, dropped
}

func (r *run) assembleMesh(j job, params mesh.Params) meshResult {
	payload, err := r.im.codec.Payload(j.chunk, j.span)
	if err != nil {
		return meshResult{err: err}
	}
	sub, notes, err := mesh.Assemble(payload, params)
	return meshResult{sub: sub, notes: notes, err: err}
}

// decodeCollision decodes collision chunks; a bad chunk is skipped with a warning.
func (r *run) decodeCollision() []scene.Shape {
	var out []scene.Shape
	for _, j := range r.shapes {
		var shapes []scene.Shape
		payload, err := r.im.codec.Payload(j.chunk, j.span)
		if err == nil {
			shapes, err = scene.DecodeCollision(payload, r.skel)
		}
		if err != nil {
			r.warn(j.chunk.String(), "collision skipped: "+err.Error())
			continue
		}
		out = append(out, shapes...)
	}
	return out
}
