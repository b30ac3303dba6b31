package def

import (
	"errors"
	"testing"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/testutil/testlog"
)

func TestEnumInvertibility(t *testing.T) {
	testlog.Start(t)
	ed := descriptor.Enum{
		Name: "Color",
		Values: []descriptor.EnumValue{
			{Name: "RED", Number: 0},
			{Name: "GREEN", Number: 1},
			{Name: "BLUE", Number: 7},
		},
	}
	pool := intern.NewPool()
	e, err := InitEnum(pool, ed, "demo.Color")
	if err != nil {
		t.Fatalf("init enum: %v", err)
	}
	defer e.Unref()

	for _, v := range ed.Values {
		got, ok := e.ValueByName(v.Name)
		if !ok || got != v.Number {
			t.Fatalf("value_by_name(%s) = %d, %v", v.Name, got, ok)
		}
		name, ok := e.NameByValue(v.Number)
		if !ok {
			t.Fatalf("name_by_value(%d) not found", v.Number)
		}
		back, ok := e.ValueByName(name)
		if !ok || back != v.Number {
			t.Fatalf("canonical name %q does not round-trip value %d", name, v.Number)
		}
	}
}

func TestEnumNotFoundIsExplicit(t *testing.T) {
	testlog.Start(t)
	ed := descriptor.Enum{
		Name:   "Status",
		Values: []descriptor.EnumValue{{Name: "OK", Number: 0}},
	}
	pool := intern.NewPool()
	e, err := InitEnum(pool, ed, "demo.Status")
	if err != nil {
		t.Fatalf("init enum: %v", err)
	}
	defer e.Unref()

	if v, ok := e.ValueByName("MISSING"); ok {
		t.Fatalf("expected not-found, got %d", v)
	}
	// Value 0 exists; not-found must be distinguishable from it.
	if _, ok := e.ValueByName("OK"); !ok {
		t.Fatalf("expected OK to resolve")
	}
	if name, ok := e.NameByValue(42); ok {
		t.Fatalf("expected not-found, got %q", name)
	}
}

func TestEnumDuplicateValueKeepsFirstName(t *testing.T) {
	testlog.Start(t)
	ed := descriptor.Enum{
		Name: "Alias",
		Values: []descriptor.EnumValue{
			{Name: "FIRST", Number: 5},
			{Name: "ALIAS", Number: 5},
		},
	}
	pool := intern.NewPool()
	e, err := InitEnum(pool, ed, "demo.Alias")
	if err != nil {
		t.Fatalf("init enum: %v", err)
	}
	defer e.Unref()

	name, ok := e.NameByValue(5)
	if !ok || name != "FIRST" {
		t.Fatalf("canonical name for 5: %q, %v", name, ok)
	}
	if v, ok := e.ValueByName("ALIAS"); !ok || v != 5 {
		t.Fatalf("alias lookup: %d, %v", v, ok)
	}
}

func TestEnumDuplicateNameRejected(t *testing.T) {
	testlog.Start(t)
	ed := descriptor.Enum{
		Name: "Bad",
		Values: []descriptor.EnumValue{
			{Name: "X", Number: 1},
			{Name: "X", Number: 2},
		},
	}
	pool := intern.NewPool()
	if _, err := InitEnum(pool, ed, "demo.Bad"); !errors.Is(err, ErrDuplicateEnumValueName) {
		t.Fatalf("expected ErrDuplicateEnumValueName, got %v", err)
	}
	if pool.Len() != 0 {
		t.Fatalf("failed init leaked %d interned strings", pool.Len())
	}
}

func TestEnumReleasesStringsOnFree(t *testing.T) {
	testlog.Start(t)
	ed := descriptor.Enum{
		Name:   "Tmp",
		Values: []descriptor.EnumValue{{Name: "A", Number: 0}, {Name: "B", Number: 1}},
	}
	pool := intern.NewPool()
	e, err := InitEnum(pool, ed, "demo.Tmp")
	if err != nil {
		t.Fatalf("init enum: %v", err)
	}
	e.Unref()
	if pool.Len() != 0 {
		t.Fatalf("enum free leaked %d interned strings", pool.Len())
	}
}
