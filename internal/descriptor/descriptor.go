// Package descriptor holds the raw schema-descriptor structures the def
// model is built from. A parsing layer (wire descriptor decoding, or
// the schemafile loader) produces these; the def package copies what it
// needs and never retains them.
package descriptor

// FieldType identifiers match the serialized descriptor type numbers.
type FieldType uint8

const (
	TypeDouble   FieldType = 1
	TypeFloat    FieldType = 2
	TypeInt64    FieldType = 3
	TypeUint64   FieldType = 4
	TypeInt32    FieldType = 5
	TypeFixed64  FieldType = 6
	TypeFixed32  FieldType = 7
	TypeBool     FieldType = 8
	TypeString   FieldType = 9
	TypeGroup    FieldType = 10
	TypeMessage  FieldType = 11
	TypeBytes    FieldType = 12
	TypeUint32   FieldType = 13
	TypeEnum     FieldType = 14
	TypeSfixed32 FieldType = 15
	TypeSfixed64 FieldType = 16
	TypeSint32   FieldType = 17
	TypeSint64   FieldType = 18
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	return t >= TypeDouble && t <= TypeSint64
}

var typeNames = map[FieldType]string{
	TypeDouble:   "double",
	TypeFloat:    "float",
	TypeInt64:    "int64",
	TypeUint64:   "uint64",
	TypeInt32:    "int32",
	TypeFixed64:  "fixed64",
	TypeFixed32:  "fixed32",
	TypeBool:     "bool",
	TypeString:   "string",
	TypeGroup:    "group",
	TypeMessage:  "message",
	TypeBytes:    "bytes",
	TypeUint32:   "uint32",
	TypeEnum:     "enum",
	TypeSfixed32: "sfixed32",
	TypeSfixed64: "sfixed64",
	TypeSint32:   "sint32",
	TypeSint64:   "sint64",
}

func (t FieldType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// TypeByName returns the FieldType for a textual type name.
func TypeByName(name string) (FieldType, bool) {
	for t, s := range typeNames {
		if s == name {
			return t, true
		}
	}
	return 0, false
}

// Label identifiers match the serialized descriptor label numbers.
type Label uint8

const (
	LabelOptional Label = 1
	LabelRequired Label = 2
	LabelRepeated Label = 3
)

func (l Label) Valid() bool {
	return l >= LabelOptional && l <= LabelRepeated
}

func (l Label) String() string {
	switch l {
	case LabelOptional:
		return "optional"
	case LabelRequired:
		return "required"
	case LabelRepeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// Field is one field entry of a message descriptor.
type Field struct {
	Name   string
	Number uint32
	Type   FieldType
	Label  Label
	// TypeName is the referenced type for message/group/enum fields,
	// fully qualified or relative; empty otherwise.
	TypeName string
}

// Message is one message entry: a name plus its ordered field entries.
type Message struct {
	Name   string
	Fields []Field
}

// EnumValue is one (name, number) pair of an enum descriptor.
type EnumValue struct {
	Name   string
	Number int32
}

// Enum is one enum entry with its ordered value entries.
type Enum struct {
	Name   string
	Values []EnumValue
}
