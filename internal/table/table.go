// Package table provides number-keyed and string-keyed lookup tables
// whose entries are caller-defined values stored inline.
//
// Entries live in one flat slice and the key index maps into it, so a
// lookup is a map probe plus one slice access and the returned pointer
// addresses a self-contained entry. Callers that embed their full
// payload in the entry type avoid a second pointer chase on hot paths.
// Insertion order is preserved in the entry slice; keys are unique.
package table

// Num is a table keyed by uint32.
type Num[E any] struct {
	index   map[uint32]int
	entries []E
	keys    []uint32
}

func NewNum[E any](capacity int) *Num[E] {
	return &Num[E]{
		index:   make(map[uint32]int, capacity),
		entries: make([]E, 0, capacity),
		keys:    make([]uint32, 0, capacity),
	}
}

// Insert stores e under key. It reports false without storing when the
// key is already present.
func (t *Num[E]) Insert(key uint32, e E) bool {
	if _, dup := t.index[key]; dup {
		return false
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, e)
	t.keys = append(t.keys, key)
	return true
}

// Lookup returns a pointer to the entry for key, or nil. The pointer is
// stable for the life of the table once insertion has finished.
func (t *Num[E]) Lookup(key uint32) *E {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return &t.entries[i]
}

func (t *Num[E]) Len() int { return len(t.entries) }

// Range calls fn for each entry in insertion order until fn returns
// false.
func (t *Num[E]) Range(fn func(key uint32, e *E) bool) {
	for i := range t.entries {
		if !fn(t.keys[i], &t.entries[i]) {
			return
		}
	}
}

// Str is a table keyed by string.
type Str[E any] struct {
	index   map[string]int
	entries []E
	keys    []string
}

func NewStr[E any](capacity int) *Str[E] {
	return &Str[E]{
		index:   make(map[string]int, capacity),
		entries: make([]E, 0, capacity),
		keys:    make([]string, 0, capacity),
	}
}

func (t *Str[E]) Insert(key string, e E) bool {
	if _, dup := t.index[key]; dup {
		return false
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, e)
	t.keys = append(t.keys, key)
	return true
}

func (t *Str[E]) Lookup(key string) *E {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return &t.entries[i]
}

func (t *Str[E]) Len() int { return len(t.entries) }

func (t *Str[E]) Range(fn func(key string, e *E) bool) {
	for i := range t.entries {
		if !fn(t.keys[i], &t.entries[i]) {
			return
		}
	}
}
