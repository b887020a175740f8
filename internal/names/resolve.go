package names

import "fmt"

// Source records where a resolved name came from.
type Source int

const (
	FromFile Source = iota
	FromLookup
	Fallback
)

func (s Source) String() string {
	switch s {
	case FromFile:
		return "file"
	case FromLookup:
		return "lookup"
	default:
		return "fallback"
	}
}

type Name struct {
	Value  string
	Source Source
}

// Resolved reports whether the name came from the file or the lookup.
func (n Name) Resolved() bool { return n.Source != Fallback }

// Resolver names bones and material slots. An explicit name in the file
// wins, then the lookup, then a name synthesized from the id. The result
// depends only on its inputs and the lookup's contents.
type Resolver struct {
	lookup Lookup
	// Warn, if set, receives lookup failures. They are otherwise treated as misses.
	Warn func(msg string)
}

// NewResolver returns a Resolver over l. A nil l resolves nothing by id.
func NewResolver(l Lookup) *Resolver {
	return &Resolver{lookup: l}
}

// Bone resolves the name of the bone at index.
func (r *Resolver) Bone(index uint32, explicit string, hash uint64) Name {
	if explicit != "" {
		return Name{Value: explicit, Source: FromFile}
	}
	if hash == 0 {
		return Name{Value: fmt.Sprintf("bone_%d", index), Source: Fallback}
	}
	if v, ok := r.find("bone", hash); ok {
		return Name{Value: v, Source: FromLookup}
	}
	return Name{Value: fmt.Sprintf("bone_%x", hash), Source: Fallback}
}

// Material resolves the name of a material slot. id is zero when the slot has
// no material record.
func (r *Resolver) Material(slot uint32, explicit string, id uint64) Name {
	if explicit != "" {
		return Name{Value: explicit, Source: FromFile}
	}
	if id == 0 {
		return Name{Value: fmt.Sprintf("material_%d", slot), Source: Fallback}
	}
	if v, ok := r.find("material", id); ok {
		return Name{Value: v, Source: FromLookup}
	}
	return Name{Value: fmt.Sprintf("material_%x", id), Source: Fallback}
}

func (r *Resolver) find(kind string, id uint64) (string, bool) {
	if r.lookup == nil {
		return "", false
	}
	v, ok, err := r.lookup.Lookup(id)
	if err != nil {
		if r.Warn != nil {
			r.Warn(fmt.Sprintf("names: %s %016x: %v", kind, id, err))
		}
		return "", false
	}
	return v, ok && v != ""
}
