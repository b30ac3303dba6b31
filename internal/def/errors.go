package def

import "errors"

var (
	ErrDuplicateFieldNumber   = errors.New("def: duplicate field number")
	ErrDuplicateFieldName     = errors.New("def: duplicate field name")
	ErrUnknownFieldType       = errors.New("def: unknown field type")
	ErrUnknownFieldLabel      = errors.New("def: unknown field label")
	ErrDuplicateEnumValueName = errors.New("def: duplicate enum value name")
)
