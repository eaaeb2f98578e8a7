// Package metadata holds the static catalogue of record views: which backend
// table each view reads, its columns and its joins.
package metadata

import (
	"sort"

	"contalink/internal/core/apperror"
)

// Registry stores view descriptors and modules. It is populated at startup and
// read-only afterwards.
type Registry struct {
	views   map[string]*TableDescriptor
	modules map[string]*Module
	order   []string // module registration order
}

func NewRegistry() *Registry {
	return &Registry{
		views:   make(map[string]*TableDescriptor),
		modules: make(map[string]*Module),
	}
}

// Register validates and stores a descriptor.
func (r *Registry) Register(def TableDescriptor) error {
	def = normalize(def)
	if err := Validate(def); err != nil {
		return err
	}
	if _, exists := r.views[def.Name]; exists {
		return apperror.NewConfiguration("duplicate view").WithDetail("view", def.Name)
	}
	r.views[def.Name] = &def
	return nil
}

// RegisterModule stores a module. Every referenced view must already be registered.
func (r *Registry) RegisterModule(m Module) error {
	if m.Name == "" {
		return apperror.NewConfiguration("module without name")
	}
	if _, exists := r.modules[m.Name]; exists {
		return apperror.NewConfiguration("duplicate module").WithDetail("module", m.Name)
	}
	for _, refs := range [][]ViewRef{m.Views, m.Settings} {
		for _, ref := range refs {
			if _, ok := r.views[ref.View]; !ok {
				return apperror.NewConfiguration("module references unknown view").
					WithDetail("module", m.Name).
					WithDetail("view", ref.View)
			}
		}
	}
	r.modules[m.Name] = &m
	r.order = append(r.order, m.Name)
	return nil
}

// Get returns the descriptor for a view. The result must not be modified.
func (r *Registry) Get(name string) (*TableDescriptor, bool) {
	d, ok := r.views[name]
	return d, ok
}

// List returns all descriptors sorted by name.
func (r *Registry) List() []*TableDescriptor {
	list := make([]*TableDescriptor, 0, len(r.views))
	for _, def := range r.views {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *Registry) Module(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Modules returns modules in registration order.
func (r *Registry) Modules() []*Module {
	list := make([]*Module, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.modules[name])
	}
	return list
}
