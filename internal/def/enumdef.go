package def

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/table"
)

// EnumDef is a bidirectional name/value mapping for one enum type.
// Enum values are self-contained, so the whole def is built in one
// pass; there is no resolution phase.
type EnumDef struct {
	header

	nameToValue *table.Str[int32]
	valueToName *table.Num[*intern.String]
}

// InitEnum builds an EnumDef from an enum descriptor. The caller keeps
// ownership of ed and fqname. Names must be unique; values may repeat,
// and the first name inserted for a value stays its canonical name.
func InitEnum(pool *intern.Pool, ed descriptor.Enum, fqname string) (*EnumDef, error) {
	e := &EnumDef{}
	e.header.init(KindEnum, pool.Intern(fqname))
	e.nameToValue = table.NewStr[int32](len(ed.Values))
	e.valueToName = table.NewNum[*intern.String](len(ed.Values))

	for _, v := range ed.Values {
		if !e.nameToValue.Insert(v.Name, v.Number) {
			e.free()
			return nil, fmt.Errorf("enum %s: %w: %q",
				fqname, ErrDuplicateEnumValueName, v.Name)
		}
		name := pool.Intern(v.Name)
		if !e.valueToName.Insert(uint32(v.Number), name) {
			// Duplicate value: an earlier name is already canonical.
			name.Unref()
		}
	}

	log.Debug().
		Str("enum", fqname).
		Int("values", e.nameToValue.Len()).
		Msg("enumdef initialized")
	return e, nil
}

func (e *EnumDef) Unref() { e.unref(e.free) }

func (e *EnumDef) free() {
	if e.valueToName != nil {
		e.valueToName.Range(func(_ uint32, name **intern.String) bool {
			(*name).Unref()
			return true
		})
	}
	e.nameToValue = nil
	e.valueToName = nil
	e.releaseName()
}

// NumValues is the number of distinct value names.
func (e *EnumDef) NumValues() int { return e.nameToValue.Len() }

// ValueByName returns the numeric value for name. The second result
// distinguishes "value 0" from "no such name".
func (e *EnumDef) ValueByName(name string) (int32, bool) {
	v := e.nameToValue.Lookup(name)
	if v == nil {
		return 0, false
	}
	return *v, true
}

// NameByValue returns the canonical name for value, or "" and false.
func (e *EnumDef) NameByValue(value int32) (string, bool) {
	n := e.valueToName.Lookup(uint32(value))
	if n == nil {
		return "", false
	}
	return (*n).Text(), true
}

// Values calls fn for every (name, value) pair in declaration order
// until fn returns false.
func (e *EnumDef) Values(fn func(name string, value int32) bool) {
	e.nameToValue.Range(func(name string, v *int32) bool {
		return fn(name, *v)
	})
}
