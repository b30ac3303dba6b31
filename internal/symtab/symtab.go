// Package symtab owns the symbol table that drives the two-phase def
// construction protocol. A schema set is built draft-first: every
// message and enum is initialized before any cross-reference is
// resolved, so mutually recursive message types need no particular
// declaration order. Only after every pending edge has been resolved
// is the set published into the concurrently-readable registry, which
// gives readers the required happens-before edge.
package symtab

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/defkit/internal/def"
	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/observability"
)

var (
	ErrDuplicateSymbol  = errors.New("symtab: duplicate symbol")
	ErrUnresolvedSymbol = errors.New("symtab: unresolved symbol")
	ErrSymbolWrongKind  = errors.New("symtab: symbol has wrong kind")
)

// SchemaSet is one batch of descriptors that is added atomically:
// either every def in the set publishes, or none does.
type SchemaSet struct {
	Package  string
	Messages []descriptor.Message
	Enums    []descriptor.Enum
}

// Options control construction of a schema set.
type Options struct {
	// Sort enables the required-first field layout ordering. Leave
	// false when field order is pinned by generated code.
	Sort bool
}

// Registry maps fully-qualified names to published defs. Published defs
// are frozen; the registry holds one ref per def and hands out an
// additional ref on every Lookup.
type Registry struct {
	pool *intern.Pool

	mu   sync.RWMutex
	defs map[string]def.Def
}

func New(pool *intern.Pool) *Registry {
	return &Registry{
		pool: pool,
		defs: make(map[string]def.Def),
	}
}

// Add builds, resolves, and publishes one schema set. Construction
// errors from the def layer and resolution failures are returned with
// the whole set abandoned and released.
func (r *Registry) Add(set SchemaSet, opts Options) error {
	drafts := make(map[string]def.Def)
	order := make([]string, 0, len(set.Messages)+len(set.Enums))

	abandon := func() {
		for _, name := range order {
			drafts[name].Unref()
		}
	}

	// Enums first: they are self-contained and resolvable immediately.
	for _, ed := range set.Enums {
		fq := qualify(set.Package, ed.Name)
		if err := r.checkFree(drafts, fq); err != nil {
			abandon()
			return err
		}
		e, err := def.InitEnum(r.pool, ed, fq)
		if err != nil {
			observability.RecordBuildFailure("enum")
			abandon()
			return err
		}
		observability.RecordDefBuilt("enum")
		drafts[fq] = e
		order = append(order, fq)
	}

	for _, md := range set.Messages {
		fq := qualify(set.Package, md.Name)
		if err := r.checkFree(drafts, fq); err != nil {
			abandon()
			return err
		}
		m, err := def.Init(r.pool, md, fq, opts.Sort)
		if err != nil {
			observability.RecordBuildFailure("message")
			abandon()
			return err
		}
		observability.RecordDefBuilt("message")
		drafts[fq] = m
		order = append(order, fq)
	}

	// Resolution pass: every draft exists now, so every edge in the
	// set (including self-references) can be attached.
	for _, name := range order {
		m, ok := drafts[name].(*def.MsgDef)
		if !ok {
			continue
		}
		for i := 0; i < m.NumFields(); i++ {
			f := m.Field(i)
			if !f.HasTarget() || f.Resolved() {
				continue
			}
			target, err := r.findTarget(drafts, set.Package, f.Symbol(), f)
			if err != nil {
				observability.RecordResolution("failed")
				log.Error().Err(err).
					Str("message", m.FullName()).
					Str("field", f.Name()).
					Msg("resolution failed")
				abandon()
				return fmt.Errorf("message %s field %q: %w", m.FullName(), f.Name(), err)
			}
			target.Ref()
			m.SetRef(f, target)
			observability.RecordResolution("resolved")
		}
	}

	r.mu.Lock()
	for _, name := range order {
		r.defs[name] = drafts[name]
	}
	n := len(r.defs)
	r.mu.Unlock()
	observability.SetLiveSymbols(n)

	log.Info().
		Str("package", set.Package).
		Int("messages", len(set.Messages)).
		Int("enums", len(set.Enums)).
		Msg("schema set published")
	return nil
}

func (r *Registry) checkFree(drafts map[string]def.Def, fq string) error {
	if _, dup := drafts[fq]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, fq)
	}
	r.mu.RLock()
	_, dup := r.defs[fq]
	r.mu.RUnlock()
	if dup {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, fq)
	}
	return nil
}

// findTarget resolves symbol against the in-flight drafts first, then
// the published registry. The returned def is not ref'd; the caller
// refs on behalf of the field it resolves.
func (r *Registry) findTarget(drafts map[string]def.Def, pkg, symbol string, f *def.FieldDef) (def.Def, error) {
	for _, candidate := range candidates(pkg, symbol) {
		if d, ok := drafts[candidate]; ok {
			return checkKind(d, f)
		}
		r.mu.RLock()
		d, ok := r.defs[candidate]
		r.mu.RUnlock()
		if ok {
			return checkKind(d, f)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnresolvedSymbol, symbol)
}

func checkKind(d def.Def, f *def.FieldDef) (def.Def, error) {
	want := def.KindEnum
	if f.IsSubMessage() {
		want = def.KindMessage
	}
	if d.DefKind() != want {
		return nil, fmt.Errorf("%w: %s is a %s, field wants a %s",
			ErrSymbolWrongKind, d.FullName(), d.DefKind(), want)
	}
	return d, nil
}

// candidates lists the fully-qualified names a symbol may denote, in
// precedence order. A leading dot pins the symbol to the root scope.
func candidates(pkg, symbol string) []string {
	if strings.HasPrefix(symbol, ".") {
		return []string{strings.TrimPrefix(symbol, ".")}
	}
	if pkg == "" {
		return []string{symbol}
	}
	return []string{pkg + "." + symbol, symbol}
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// Lookup returns the published def for fqname with a new ref taken on
// the caller's behalf.
func (r *Registry) Lookup(fqname string) (def.Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[fqname]
	if !ok {
		return nil, false
	}
	d.Ref()
	return d, true
}

// LookupMsg is Lookup narrowed to message defs. The ref is released
// before returning when the symbol exists but is not a message.
func (r *Registry) LookupMsg(fqname string) (*def.MsgDef, bool) {
	d, ok := r.Lookup(fqname)
	if !ok {
		return nil, false
	}
	m, ok := d.(*def.MsgDef)
	if !ok {
		d.Unref()
		return nil, false
	}
	return m, true
}

// LookupEnum is Lookup narrowed to enum defs.
func (r *Registry) LookupEnum(fqname string) (*def.EnumDef, bool) {
	d, ok := r.Lookup(fqname)
	if !ok {
		return nil, false
	}
	e, ok := d.(*def.EnumDef)
	if !ok {
		d.Unref()
		return nil, false
	}
	return e, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Names returns the published symbol names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Release drops the registry's ref on every published def and empties
// the table. Defs still ref'd elsewhere stay alive.
func (r *Registry) Release() {
	r.mu.Lock()
	for name, d := range r.defs {
		delete(r.defs, name)
		d.Unref()
	}
	r.mu.Unlock()
	observability.SetLiveSymbols(0)
}
