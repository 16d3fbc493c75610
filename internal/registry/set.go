package registry

import (
	"sdkgen/internal/sdkerr"
)

// Symbol is one canonical name. Type and Desc are only set for function
// categories. Guard, when set, names a preprocessor symbol whose definition
// hides the case label in generated code (for example NTV2_DEPRECATE).
type Symbol struct {
	Name  string
	Type  string
	Desc  string
	Guard string
}

// Set is the ordered list of legal symbols for one category.
type Set struct {
	Category Category
	symbols  []Symbol
	index    map[string]int
}

// NewSet returns an empty set for the category.
func NewSet(c Category) *Set {
	return &Set{Category: c, index: make(map[string]int)}
}

// Add appends a symbol. It reports false if the name is already present.
func (s *Set) Add(sym Symbol) bool {
	if _, dup := s.index[sym.Name]; dup {
		return false
	}
	s.index[sym.Name] = len(s.symbols)
	s.symbols = append(s.symbols, sym)
	return true
}

// Has reports whether name is canonical in this set.
func (s *Set) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Lookup returns the symbol with the given name.
func (s *Set) Lookup(name string) (Symbol, bool) {
	if s == nil {
		return Symbol{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Symbol{}, false
	}
	return s.symbols[i], true
}

// Len returns the number of symbols.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.symbols)
}

// Names returns the symbol names in load order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		names[i] = sym.Name
	}
	return names
}

// Symbols returns a copy of the symbols in load order.
func (s *Set) Symbols() []Symbol {
	if s == nil {
		return nil
	}
	return append([]Symbol(nil), s.symbols...)
}

// Registry holds one Set per category plus the declared category of every
// symbol.
type Registry struct {
	sets  map[Category]*Set
	table map[string]Category
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sets: make(map[Category]*Set), table: make(map[string]Category)}
}

// Add installs a set. A symbol already declared by another category is a
// duplicate definition: every symbol must belong to exactly one category.
func (r *Registry) Add(set *Set) error {
	for _, sym := range set.symbols {
		if prev, ok := r.table[sym.Name]; ok && prev != set.Category {
			return sdkerr.New(sdkerr.KindDuplicateDefinition,
				"'%s' declared as both %s and %s", sym.Name, prev, set.Category)
		}
	}
	if old, ok := r.sets[set.Category]; ok {
		for _, sym := range old.symbols {
			delete(r.table, sym.Name)
		}
	}
	r.sets[set.Category] = set
	for _, sym := range set.symbols {
		r.table[sym.Name] = set.Category
	}
	return nil
}

// Set returns the set for a category, or an empty set if none was loaded.
func (r *Registry) Set(c Category) *Set {
	if s, ok := r.sets[c]; ok {
		return s
	}
	return NewSet(c)
}

// Classify returns the declared category of a symbol.
func (r *Registry) Classify(symbol string) (Category, bool) {
	c, ok := r.table[symbol]
	return c, ok
}

// Devices returns the canonical device IDs, including the sentinel when
// present.
func (r *Registry) Devices() []string {
	return r.Set(DeviceID).Names()
}
