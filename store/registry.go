package store

import (
	"fmt"
	"path"
	"strings"
)

// Registry is the explicit format_id -> Descriptor table.
type Registry struct {
	order []*Descriptor
	byID  map[string]*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Descriptor)}
}

// Register adds d. Ids must be unique.
func (r *Registry) Register(d *Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("registering format: empty id")
	}
	if d.Load == nil {
		return fmt.Errorf("registering format %s: no loader", d.ID)
	}
	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("registering format %s: already registered", d.ID)
	}
	r.byID[d.ID] = d
	r.order = append(r.order, d)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ds ...*Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Get returns the descriptor registered under id.
func (r *Registry) Get(id string) (*Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, id)
	}
	return d, nil
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), r.order...)
}

// DetectFilename returns descriptors whose Autoload globs match the base
// name of filename.
func (r *Registry) DetectFilename(filename string) []*Descriptor {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	var out []*Descriptor
	for _, d := range r.order {
		for _, pattern := range d.Autoload {
			if ok, _ := path.Match(pattern, base); ok {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Sniff returns descriptors whose Sniff function accepts data.
func (r *Registry) Sniff(data []byte) []*Descriptor {
	var out []*Descriptor
	for _, d := range r.order {
		if d.Sniff != nil && d.Sniff(data) {
			out = append(out, d)
		}
	}
	return out
}
