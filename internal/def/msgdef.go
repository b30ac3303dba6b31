package def

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/table"
)

// MsgDef describes a single message type: an ordered field array plus
// number- and name-keyed lookup tables over it.
//
// The table entries embed a full FieldDef value instead of an index or
// pointer into the field array. Field lookup is on the decode/encode
// hot path, and a self-contained entry answers a lookup from the entry
// itself with no second dereference. The array remains the owner of
// every ref a field holds; table copies are shadows and never release
// anything.
type MsgDef struct {
	header

	instanceSize  uint32
	setFlagsBytes uint32
	numRequired   uint32

	// Exclusively owned; length is fixed after Init.
	fields []FieldDef

	byNum  *table.Num[FieldDef]
	byName *table.Str[FieldDef]

	// Attached by the instance layer; opaque here.
	defaultInst RefCounted
}

// Init builds a MsgDef from a message descriptor. The caller keeps
// ownership of md and fqname; the def copies what it needs.
//
// On return the def is structurally complete but its message/enum
// fields hold Unresolved placeholders; a resolver must call SetRef once
// per such field before the def is used as a schema. sortFields selects
// the layout ordering of SortFields and should be false when field
// order is pinned by previously generated code.
//
// Validation failures (duplicate field number or name, unknown field
// type or label) return a wrapped sentinel error and release everything
// the partial def acquired.
func Init(pool *intern.Pool, md descriptor.Message, fqname string, sortFields bool) (*MsgDef, error) {
	m := &MsgDef{}
	m.header.init(KindMessage, pool.Intern(fqname))

	m.fields = make([]FieldDef, 0, len(md.Fields))
	for _, fd := range md.Fields {
		var f FieldDef
		if err := initField(&f, fd, pool); err != nil {
			m.free()
			return nil, fmt.Errorf("message %s field %q: %w", fqname, fd.Name, err)
		}
		m.fields = append(m.fields, f)
	}

	if sortFields {
		SortFields(m.fields)
	}

	// Layout: presence bits first, then each field's slot in array
	// order. With sorting on, required fields own the low-order bits.
	m.setFlagsBytes = uint32(len(m.fields)+7) / 8
	offset := m.setFlagsBytes
	for i := range m.fields {
		f := &m.fields[i]
		f.fieldIndex = uint16(i)
		f.byteOffset = offset
		offset += f.storageSize()
		if f.IsRequired() {
			m.numRequired++
		}
	}
	m.instanceSize = offset

	m.byNum = table.NewNum[FieldDef](len(m.fields))
	m.byName = table.NewStr[FieldDef](len(m.fields))
	for i := range m.fields {
		f := m.fields[i]
		if !m.byNum.Insert(f.number, f) {
			m.free()
			return nil, fmt.Errorf("message %s field %q: %w: %d",
				fqname, f.Name(), ErrDuplicateFieldNumber, f.number)
		}
		if !m.byName.Insert(f.Name(), f) {
			m.free()
			return nil, fmt.Errorf("message %s: %w: %q",
				fqname, ErrDuplicateFieldName, f.Name())
		}
	}

	log.Debug().
		Str("message", fqname).
		Int("fields", len(m.fields)).
		Uint32("required", m.numRequired).
		Bool("sorted", sortFields).
		Msg("msgdef initialized")
	return m, nil
}

func (m *MsgDef) Unref() { m.unref(m.free) }

// free releases every ref the def owns. Targets are released once per
// logical field, through the owning array only.
func (m *MsgDef) free() {
	for i := range m.fields {
		m.fields[i].release()
	}
	m.fields = nil
	m.byNum = nil
	m.byName = nil
	if m.defaultInst != nil {
		m.defaultInst.Unref()
		m.defaultInst = nil
	}
	m.releaseName()
}

func (m *MsgDef) NumFields() int            { return len(m.fields) }
func (m *MsgDef) NumRequiredFields() uint32 { return m.numRequired }

// InstanceSize is the byte size of one instance of this message.
func (m *MsgDef) InstanceSize() uint32 { return m.instanceSize }

// SetFlagsBytes is the size of the presence-bitmask region at the
// front of an instance.
func (m *MsgDef) SetFlagsBytes() uint32 { return m.setFlagsBytes }

// Field returns the i'th field in layout order.
func (m *MsgDef) Field(i int) *FieldDef { return &m.fields[i] }

// FieldByNumber returns the field with the given number, or nil.
// Allocation-free and safe for unsynchronized readers once the def is
// published.
func (m *MsgDef) FieldByNumber(number uint32) *FieldDef {
	return m.byNum.Lookup(number)
}

// FieldByName returns the field with the given name, or nil.
func (m *MsgDef) FieldByName(name string) *FieldDef {
	return m.byName.Lookup(name)
}

// SetRef attaches the resolved target def to one message/enum field.
// It consumes the caller's reference on target: the caller refs on
// behalf of the field and transfers that ref here. Must be called
// exactly once per field with a target slot, during the single-writer
// resolution window; calling it twice, or on a field without a target
// slot, is a caller bug.
//
// f may point at the field array or at either table's entry; all three
// copies are updated.
func (m *MsgDef) SetRef(f *FieldDef, target Def) {
	var owner *FieldDef
	for i := range m.fields {
		if m.fields[i].number == f.number {
			owner = &m.fields[i]
			break
		}
	}
	if owner == nil {
		panic("def: setref: field " + f.Name() + " is not part of message " + m.FullName())
	}
	if owner.target == nil {
		panic("def: setref on field without a target: " + owner.Name())
	}
	if owner.target.DefKind() != KindUnresolved {
		panic("def: double resolution of field " + m.FullName() + "." + owner.Name())
	}

	owner.target.Unref()
	owner.target = target
	if e := m.byNum.Lookup(owner.number); e != nil {
		e.target = target
	}
	if e := m.byName.Lookup(owner.Name()); e != nil {
		e.target = target
	}

	log.Debug().
		Str("message", m.FullName()).
		Str("field", owner.Name()).
		Str("target", target.FullName()).
		Msg("field reference resolved")
}

// SetDefaultInstance attaches the fully-default-valued instance built
// by the instance layer, consuming the caller's reference. Part of the
// single-writer construction window.
func (m *MsgDef) SetDefaultInstance(inst RefCounted) {
	if m.defaultInst != nil {
		m.defaultInst.Unref()
	}
	m.defaultInst = inst
}

// DefaultInstance returns the attached default instance, or nil.
func (m *MsgDef) DefaultInstance() RefCounted { return m.defaultInst }
