package vm

import "sync"

// interner maps names to dense IDs in order of first use. It is
// append-only and safe for concurrent use.
type interner struct {
	mu     sync.RWMutex
	byName map[string]int
	byID   []string
}

func newInterner(capacity int) *interner {
	return &interner{
		byName: make(map[string]int, capacity),
		byID:   make([]string, 0, capacity),
	}
}

func (in *interner) intern(name string) int {
	in.mu.RLock()
	id, ok := in.byName[name]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.byName[name]; ok {
		return id
	}
	id = len(in.byID)
	in.byName[name] = id
	in.byID = append(in.byID, name)
	return id
}

func (in *interner) lookup(name string) (int, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.byName[name]
	return id, ok
}

func (in *interner) name(id int) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id < 0 || id >= len(in.byID) {
		return ""
	}
	return in.byID[id]
}

func (in *interner) len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID)
}

// SelectorTable interns operation names so that vtable lookup is a slice
// index.
type SelectorTable struct {
	names *interner
}

// NewSelectorTable creates an empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{names: newInterner(64)}
}

// Intern returns the ID for name, assigning the next ID if it is new.
func (st *SelectorTable) Intern(name string) int {
	return st.names.intern(name)
}

// Lookup returns the ID for name, or -1 if it was never interned.
func (st *SelectorTable) Lookup(name string) int {
	if id, ok := st.names.lookup(name); ok {
		return id
	}
	return -1
}

// Name returns the name for id, or "" if invalid.
func (st *SelectorTable) Name(id int) string {
	return st.names.name(id)
}

// Len returns the number of interned selectors.
func (st *SelectorTable) Len() int {
	return st.names.len()
}
