package container

import (
	"fmt"

	"scene-importer/internal/format"
)

// Handler consumes one chunk. span is the raw on-disk payload (possibly compressed).
// A returned error aborts the walk; recoverable problems are the handler's to record.
type Handler func(c RawChunk, span []byte) error

// Entry describes how a tag is dispatched.
type Entry struct {
	Name string
	// NeedsBones chunks reference bone indices and must follow the bone table.
	NeedsBones bool
	// ProvidesBones marks the bone table itself.
	ProvidesBones bool
	Handle        Handler
}

// Registry is an open tag → handler table. Tags without an entry are skipped.
type Registry struct {
	entries map[format.Tag]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[format.Tag]Entry)}
}

// Register installs or replaces the entry for tag.
func (r *Registry) Register(tag format.Tag, e Entry) {
	if e.Name == "" {
		e.Name = tag.String()
	}
	r.entries[tag] = e
}

func (r *Registry) Lookup(tag format.Tag) (Entry, bool) {
	e, ok := r.entries[tag]
	return e, ok
}

// Walk dispatches every chunk in directory order. onSkip, if non-nil, sees
// each chunk whose tag has no entry.
//
// When the directory contains a bone table, any NeedsBones chunk seen before
// the bone table has been handled fails with format.ErrOutOfOrderChunk. A file
// without a bone table is a static mesh and its NeedsBones chunks are allowed.
func (f *File) Walk(reg *Registry, onSkip func(RawChunk)) error {
	bonesReady := true
	for _, c := range f.Chunks {
		if e, ok := reg.Lookup(c.Tag); ok && e.ProvidesBones {
			bonesReady = false
			break
		}
	}

	for _, c := range f.Chunks {
		e, ok := reg.Lookup(c.Tag)
		if !ok {
			if onSkip != nil {
				onSkip(c)
			}
			continue
		}
		if e.NeedsBones && !bonesReady {
			return fmt.Errorf("container: %s chunk %s precedes the bone table: %w",
				e.Name, c, format.ErrOutOfOrderChunk)
		}
		if err := e.Handle(c, f.Span(c)); err != nil {
			return fmt.Errorf("container: %s chunk %s: %w", e.Name, c, err)
		}
		if e.ProvidesBones {
			bonesReady = true
		}
	}
	return nil
}
