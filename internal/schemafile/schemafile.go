// Package schemafile loads TOML schema-definition files into the raw
// descriptor structures the def model consumes.
package schemafile

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/symtab"
)

type fileSchema struct {
	Package  string        `toml:"package"`
	Messages []fileMessage `toml:"message"`
	Enums    []fileEnum    `toml:"enum"`
}

type fileMessage struct {
	Name   string      `toml:"name"`
	Fields []fileField `toml:"field"`
}

type fileField struct {
	Name   string `toml:"name"`
	Number uint32 `toml:"number"`
	Type   string `toml:"type"`
	Label  string `toml:"label"`
	// Of names the referenced type for message/group/enum fields.
	Of string `toml:"of"`
}

type fileEnum struct {
	Name   string          `toml:"name"`
	Values []fileEnumValue `toml:"value"`
}

type fileEnumValue struct {
	Name   string `toml:"name"`
	Number int32  `toml:"number"`
}

// Load parses one schema file into a SchemaSet ready for the registry.
func Load(path string) (symtab.SchemaSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return symtab.SchemaSet{}, fmt.Errorf("schema load failed (%s): %w", path, err)
	}
	return Parse(data, path)
}

// Parse converts raw TOML into a SchemaSet. name is used in error
// messages only.
func Parse(data []byte, name string) (symtab.SchemaSet, error) {
	var raw fileSchema
	if err := toml.Unmarshal(data, &raw); err != nil {
		return symtab.SchemaSet{}, fmt.Errorf("schema parse failed (%s): %w", name, err)
	}

	set := symtab.SchemaSet{Package: strings.TrimSpace(raw.Package)}

	for i, m := range raw.Messages {
		md, err := convertMessage(m)
		if err != nil {
			return symtab.SchemaSet{}, fmt.Errorf("%s: message[%d]: %w", name, i, err)
		}
		set.Messages = append(set.Messages, md)
	}
	for i, e := range raw.Enums {
		ed, err := convertEnum(e)
		if err != nil {
			return symtab.SchemaSet{}, fmt.Errorf("%s: enum[%d]: %w", name, i, err)
		}
		set.Enums = append(set.Enums, ed)
	}
	return set, nil
}

func convertMessage(m fileMessage) (descriptor.Message, error) {
	if strings.TrimSpace(m.Name) == "" {
		return descriptor.Message{}, fmt.Errorf("name is required")
	}
	md := descriptor.Message{Name: m.Name}
	for _, f := range m.Fields {
		fd, err := convertField(f)
		if err != nil {
			return descriptor.Message{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		md.Fields = append(md.Fields, fd)
	}
	return md, nil
}

func convertField(f fileField) (descriptor.Field, error) {
	if strings.TrimSpace(f.Name) == "" {
		return descriptor.Field{}, fmt.Errorf("name is required")
	}
	if f.Number == 0 {
		return descriptor.Field{}, fmt.Errorf("number must be positive")
	}
	ftype, ok := descriptor.TypeByName(strings.TrimSpace(f.Type))
	if !ok {
		return descriptor.Field{}, fmt.Errorf("unknown type %q", f.Type)
	}
	label, err := parseLabel(f.Label)
	if err != nil {
		return descriptor.Field{}, err
	}
	fd := descriptor.Field{
		Name:   f.Name,
		Number: f.Number,
		Type:   ftype,
		Label:  label,
	}
	needsOf := ftype == descriptor.TypeMessage ||
		ftype == descriptor.TypeGroup ||
		ftype == descriptor.TypeEnum
	if needsOf {
		if strings.TrimSpace(f.Of) == "" {
			return descriptor.Field{}, fmt.Errorf("%s field requires of=<type name>", ftype)
		}
		fd.TypeName = strings.TrimSpace(f.Of)
	} else if strings.TrimSpace(f.Of) != "" {
		return descriptor.Field{}, fmt.Errorf("of is only valid on message/group/enum fields")
	}
	return fd, nil
}

func parseLabel(s string) (descriptor.Label, error) {
	switch strings.TrimSpace(s) {
	case "", "optional":
		return descriptor.LabelOptional, nil
	case "required":
		return descriptor.LabelRequired, nil
	case "repeated":
		return descriptor.LabelRepeated, nil
	default:
		return 0, fmt.Errorf("unknown label %q", s)
	}
}

func convertEnum(e fileEnum) (descriptor.Enum, error) {
	if strings.TrimSpace(e.Name) == "" {
		return descriptor.Enum{}, fmt.Errorf("name is required")
	}
	if len(e.Values) == 0 {
		return descriptor.Enum{}, fmt.Errorf("enum %q has no values", e.Name)
	}
	ed := descriptor.Enum{Name: e.Name}
	for _, v := range e.Values {
		if strings.TrimSpace(v.Name) == "" {
			return descriptor.Enum{}, fmt.Errorf("enum %q: value name is required", e.Name)
		}
		ed.Values = append(ed.Values, descriptor.EnumValue{Name: v.Name, Number: v.Number})
	}
	return ed, nil
}
