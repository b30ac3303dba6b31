// Package def implements the descriptor ("def") model for the schema
// layer of the wire format: message, field, and enum definitions as
// immutable, reference-counted objects with O(1) number/name lookup.
//
// Construction is two-phase. Init builds a structurally complete def
// whose message/enum field targets are Unresolved placeholders; a
// resolver later attaches the real target to each such field with
// SetRef. Mutually recursive schemas work because no def needs its
// targets to exist at Init time. Once every edge is resolved and the
// def is published, nothing outside the refcount is ever mutated
// again, so unsynchronized readers are safe.
package def

import (
	"fmt"
	"sync/atomic"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
)

// Kind identifies the concrete def behind a Def value.
type Kind uint8

const (
	KindMessage Kind = iota
	KindEnum
	KindService
	KindExtension
	// KindUnresolved marks a placeholder holding a symbolic name that
	// has not been looked up yet.
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	case KindService:
		return "service"
	case KindExtension:
		return "extension"
	case KindUnresolved:
		return "unresolved"
	default:
		return "invalid"
	}
}

// Def is any schema construct: message, enum, service, extension, or
// an unresolved placeholder. Ref and Unref are safe under concurrent
// use; everything else is immutable once the def is published.
type Def interface {
	DefKind() Kind
	FullName() string
	Ref()
	Unref()
}

// RefCounted is the contract the def model requires of values it owns
// but does not inspect, such as a message's default instance.
type RefCounted interface {
	Ref()
	Unref()
}

// header carries the members every concrete def shares. Destruction is
// dispatched through each concrete type's free method rather than a
// tag switch; the kind tag exists for callers that branch on it.
type header struct {
	kind   Kind
	refs   atomic.Int32
	fqname *intern.String
}

// init claims ownership of one reference on fqname and starts the def
// with a refcount of 1.
func (h *header) init(kind Kind, fqname *intern.String) {
	h.kind = kind
	h.fqname = fqname
	h.refs.Store(1)
}

func (h *header) DefKind() Kind { return h.kind }

func (h *header) FullName() string {
	if h.fqname == nil {
		return ""
	}
	return h.fqname.Text()
}

// Ref takes an additional reference.
func (h *header) Ref() { h.refs.Add(1) }

// unref drops one reference and runs free on the 1->0 transition.
// An unpaired Unref is a caller bug, not a data error.
func (h *header) unref(free func()) {
	n := h.refs.Add(-1)
	if n < 0 {
		panic("def: refcount underflow: " + h.FullName())
	}
	if n == 0 {
		free()
	}
}

// RefCount is exposed for tests and diagnostics only.
func (h *header) RefCount() int32 { return h.refs.Load() }

func (h *header) releaseName() {
	if h.fqname != nil {
		h.fqname.Unref()
		h.fqname = nil
	}
}

// Unresolved is a Def-shaped placeholder that is really just an owned
// symbolic name. It lets a field's target slot always hold a Def, even
// before the symbol is looked up.
type Unresolved struct {
	header
}

// NewUnresolved creates a placeholder for symbol with one reference.
func NewUnresolved(pool *intern.Pool, symbol string) *Unresolved {
	u := &Unresolved{}
	u.init(KindUnresolved, pool.Intern(symbol))
	return u
}

func (u *Unresolved) Unref() { u.unref(u.free) }

func (u *Unresolved) free() { u.releaseName() }

// ServiceDef is declared for completeness; service defs are not
// implemented and any attempt to construct or destroy one fails loudly
// instead of silently no-oping.
type ServiceDef struct {
	header
}

func NewServiceDef(pool *intern.Pool, fqname string) *ServiceDef {
	panic("def: service defs are unimplemented: " + fqname)
}

func (s *ServiceDef) Unref() {
	s.unref(func() {
		panic("def: service defs are unimplemented: " + s.FullName())
	})
}

// ExtensionDef describes a single extension field. Extension merging
// lives outside this model; the def only carries the field itself.
type ExtensionDef struct {
	header
	field FieldDef
}

// InitExtension builds a standalone extension field def. The caller
// keeps ownership of fd and fqname.
func InitExtension(pool *intern.Pool, fd descriptor.Field, fqname string) (*ExtensionDef, error) {
	e := &ExtensionDef{}
	e.header.init(KindExtension, pool.Intern(fqname))
	if err := initField(&e.field, fd, pool); err != nil {
		e.free()
		return nil, fmt.Errorf("extension %s: %w", fqname, err)
	}
	return e, nil
}

func (e *ExtensionDef) Field() *FieldDef { return &e.field }

func (e *ExtensionDef) Unref() { e.unref(e.free) }

func (e *ExtensionDef) free() {
	e.field.release()
	e.releaseName()
}
