package def

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
)

// FieldDef describes a single field of a message. It is not a full def:
// it has no refcount of its own and lives only inside the MsgDef (or
// ExtensionDef) that owns it.
type FieldDef struct {
	ftype  descriptor.FieldType
	label  descriptor.Label
	number uint32
	name   *intern.String

	// Layout metadata for instance storage; meaningful only once the
	// owning MsgDef has been initialized.
	byteOffset uint32
	fieldIndex uint16

	// target holds the referenced def for message/group/enum fields:
	// an *Unresolved placeholder until SetRef runs, the resolved def
	// after. nil means the field type takes no target at all, so the
	// two absent states never collapse into one another.
	target Def
}

// initField populates f from a descriptor entry. The field owns one ref
// on its interned name and, for message/group/enum types, one ref on an
// Unresolved placeholder wrapping the symbolic type name.
func initField(f *FieldDef, fd descriptor.Field, pool *intern.Pool) error {
	if !fd.Type.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownFieldType, fd.Type)
	}
	if !fd.Label.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownFieldLabel, fd.Label)
	}
	f.ftype = fd.Type
	f.label = fd.Label
	f.number = fd.Number
	f.name = pool.Intern(fd.Name)
	if f.HasTarget() {
		f.target = NewUnresolved(pool, fd.TypeName)
	}
	return nil
}

// release drops the refs the field owns. Shadow copies embedded in
// lookup-table entries must not call this; only the owning array does.
func (f *FieldDef) release() {
	if f.name != nil {
		f.name.Unref()
		f.name = nil
	}
	if f.target != nil {
		f.target.Unref()
		f.target = nil
	}
}

func (f *FieldDef) Type() descriptor.FieldType { return f.ftype }
func (f *FieldDef) Label() descriptor.Label    { return f.label }
func (f *FieldDef) Number() uint32             { return f.number }

func (f *FieldDef) Name() string {
	if f.name == nil {
		return ""
	}
	return f.name.Text()
}

// ByteOffset is where in an instance the field's data lives.
func (f *FieldDef) ByteOffset() uint32 { return f.byteOffset }

// FieldIndex is the field's slot in the owning message's field array;
// it doubles as the field's presence bit index.
func (f *FieldDef) FieldIndex() uint16 { return f.fieldIndex }

// IsSubMessage reports whether the field holds a nested message
// (groups are submessages with a legacy encoding).
func (f *FieldDef) IsSubMessage() bool {
	return f.ftype == descriptor.TypeMessage || f.ftype == descriptor.TypeGroup
}

// IsString reports whether the field holds string-like data.
func (f *FieldDef) IsString() bool {
	return f.ftype == descriptor.TypeString || f.ftype == descriptor.TypeBytes
}

func (f *FieldDef) IsRepeated() bool {
	return f.label == descriptor.LabelRepeated
}

// IsRequired reports whether absence of the field makes an instance
// invalid at the encode/decode boundary.
func (f *FieldDef) IsRequired() bool {
	return f.label == descriptor.LabelRequired
}

// NeedsManaged reports whether the field's instance slot holds managed
// memory rather than inline scalar data.
func (f *FieldDef) NeedsManaged() bool {
	return f.IsRepeated() || f.IsString() || f.IsSubMessage()
}

// ElemNeedsManaged classifies the element type, ignoring repeated-ness.
func (f *FieldDef) ElemNeedsManaged() bool {
	return f.IsString() || f.IsSubMessage()
}

// RefType classifies a managed instance slot for the instance layer.
type RefType uint8

const (
	RefNone RefType = iota
	RefArray
	RefString
	RefMessage
)

// SlotRefType is defined iff NeedsManaged.
func (f *FieldDef) SlotRefType() RefType {
	switch {
	case f.IsRepeated():
		return RefArray
	case f.IsString():
		return RefString
	case f.IsSubMessage():
		return RefMessage
	default:
		return RefNone
	}
}

// ElemRefType is defined iff ElemNeedsManaged.
func (f *FieldDef) ElemRefType() RefType {
	switch {
	case f.IsString():
		return RefString
	case f.IsSubMessage():
		return RefMessage
	default:
		return RefNone
	}
}

// HasTarget reports whether the field's type references another def.
func (f *FieldDef) HasTarget() bool {
	return f.IsSubMessage() || f.ftype == descriptor.TypeEnum
}

// Resolved reports whether SetRef has run for this field. False for
// fields with no target slot.
func (f *FieldDef) Resolved() bool {
	return f.target != nil && f.target.DefKind() != KindUnresolved
}

// Symbol returns the symbolic type name still awaiting resolution, or
// "" if the field is resolved or takes no target.
func (f *FieldDef) Symbol() string {
	if f.target != nil && f.target.DefKind() == KindUnresolved {
		return f.target.FullName()
	}
	return ""
}

// Target returns the resolved def this field references. Calling it on
// a field whose reference has not been resolved, or that takes no
// target, is a caller bug.
func (f *FieldDef) Target() Def {
	if f.target == nil {
		panic("def: field " + f.Name() + " has no target")
	}
	if f.target.DefKind() == KindUnresolved {
		panic("def: unresolved reference used: field " + f.Name() +
			" -> " + f.target.FullName())
	}
	return f.target
}

// SortFields reorders fields in place into the layout order: required
// fields first, then by ascending field number within each class. The
// sorted prefix lets presence checks test required fields as one
// contiguous bitmask region. The ordering may change between releases;
// callers must not persist field indexes across versions.
func SortFields(fields []FieldDef) {
	slices.SortFunc(fields, func(a, b FieldDef) int {
		if a.IsRequired() != b.IsRequired() {
			if a.IsRequired() {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.number, b.number)
	})
}

// storageSize is the instance footprint of the field's slot. Managed
// slots are pointer-sized.
func (f *FieldDef) storageSize() uint32 {
	if f.NeedsManaged() {
		return 8
	}
	switch f.ftype {
	case descriptor.TypeDouble, descriptor.TypeInt64, descriptor.TypeUint64,
		descriptor.TypeFixed64, descriptor.TypeSfixed64, descriptor.TypeSint64:
		return 8
	case descriptor.TypeBool:
		return 1
	default:
		return 4
	}
}
