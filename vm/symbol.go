package vm

import "sync"

// ---------------------------------------------------------------------------
// SymbolTable: Interned symbols
// ---------------------------------------------------------------------------

// Symbol is an interned name. Two symbols with the same name are the same
// pointer, so symbols compare with Eq.
type Symbol struct {
	base
	name string
}

func (*Symbol) Immutable() bool  { return true }
func (s *Symbol) String() string { return s.name }

// Name returns the symbol's name.
func (s *Symbol) Name() string { return s.name }

// SymbolTable interns symbol names.
type SymbolTable struct {
	mu     sync.RWMutex
	byName map[string]*Symbol
}

// NewSymbolTable creates a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Intern returns the symbol for name, creating it if needed.
func (st *SymbolTable) Intern(name string) *Symbol {
	// Fast path: read-only lookup
	st.mu.RLock()
	if s, ok := st.byName[name]; ok {
		st.mu.RUnlock()
		return s
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := st.byName[name]; ok {
		return s
	}
	s := &Symbol{name: name}
	st.byName[name] = s
	return s
}

// Lookup returns the symbol for name without creating it.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.byName[name]
	return s, ok
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byName)
}

// symbols is shared by every VM in the process so that symbols are
// interned globally.
var symbols = NewSymbolTable()

// Intern returns the process-wide symbol for name.
func Intern(name string) *Symbol {
	return symbols.Intern(name)
}
