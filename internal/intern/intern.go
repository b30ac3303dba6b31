// Package intern provides reference-counted interned strings.
//
// Every def name in the descriptor model is an interned string: equal
// text is represented by one shared *String, so name comparisons inside
// the model are pointer comparisons and each distinct name is stored
// once. Strings are handed out with one reference; holders pair every
// Ref with an Unref, and the pool entry is removed when the last
// reference drops.
package intern

import (
	"sync"
	"sync/atomic"
)

// String is one interned string. The text is immutable; only the
// refcount changes after creation.
type String struct {
	text string
	refs atomic.Int32
	pool *Pool
}

// Pool deduplicates strings. The zero value is not usable; call NewPool.
type Pool struct {
	mu      sync.Mutex
	entries map[string]*String
}

func NewPool() *Pool {
	return &Pool{entries: make(map[string]*String)}
}

// Intern returns the canonical *String for text, creating it if needed.
// The returned string carries one new reference owned by the caller.
func (p *Pool) Intern(text string) *String {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.entries[text]; ok {
		s.refs.Add(1)
		return s
	}
	s := &String{text: text, pool: p}
	s.refs.Add(1)
	p.entries[text] = s
	return s
}

// Contains reports whether text is currently live in the pool.
func (p *Pool) Contains(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[text]
	return ok
}

// Len returns the number of live strings.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (s *String) Text() string { return s.text }

// Ref takes an additional reference.
func (s *String) Ref() { s.refs.Add(1) }

// Unref releases one reference. Dropping the last reference removes the
// string from its pool. Unref past zero panics.
func (s *String) Unref() {
	n := s.refs.Add(-1)
	if n < 0 {
		panic("intern: string refcount underflow: " + s.text)
	}
	if n == 0 {
		s.pool.remove(s)
	}
}

func (p *Pool) remove(s *String) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A concurrent Intern may have revived the entry between the count
	// reaching zero and this removal.
	if s.refs.Load() == 0 && p.entries[s.text] == s {
		delete(p.entries, s.text)
	}
}
