package def

import (
	"testing"

	"github.com/danmuck/defkit/internal/descriptor"
	"github.com/danmuck/defkit/internal/intern"
	"github.com/danmuck/defkit/internal/testutil/testlog"
)

func mkField(t *testing.T, pool *intern.Pool, fd descriptor.Field) FieldDef {
	t.Helper()
	var f FieldDef
	if err := initField(&f, fd, pool); err != nil {
		t.Fatalf("init field %q: %v", fd.Name, err)
	}
	return f
}

func TestFieldPredicates(t *testing.T) {
	testlog.Start(t)
	pool := intern.NewPool()

	cases := []struct {
		name        string
		fd          descriptor.Field
		subMsg      bool
		str         bool
		repeated    bool
		managed     bool
		elemManaged bool
	}{
		{
			name: "scalar",
			fd:   descriptor.Field{Name: "n", Number: 1, Type: descriptor.TypeInt32, Label: descriptor.LabelOptional},
		},
		{
			name:        "string",
			fd:          descriptor.Field{Name: "s", Number: 2, Type: descriptor.TypeString, Label: descriptor.LabelOptional},
			str:         true,
			managed:     true,
			elemManaged: true,
		},
		{
			name:        "bytes",
			fd:          descriptor.Field{Name: "b", Number: 3, Type: descriptor.TypeBytes, Label: descriptor.LabelOptional},
			str:         true,
			managed:     true,
			elemManaged: true,
		},
		{
			name:        "submessage",
			fd:          descriptor.Field{Name: "m", Number: 4, Type: descriptor.TypeMessage, Label: descriptor.LabelOptional, TypeName: "M"},
			subMsg:      true,
			managed:     true,
			elemManaged: true,
		},
		{
			name:        "group",
			fd:          descriptor.Field{Name: "g", Number: 5, Type: descriptor.TypeGroup, Label: descriptor.LabelOptional, TypeName: "G"},
			subMsg:      true,
			managed:     true,
			elemManaged: true,
		},
		{
			name:     "repeated scalar",
			fd:       descriptor.Field{Name: "r", Number: 6, Type: descriptor.TypeFixed64, Label: descriptor.LabelRepeated},
			repeated: true,
			managed:  true,
		},
	}

	for _, tc := range cases {
		f := mkField(t, pool, tc.fd)
		if f.IsSubMessage() != tc.subMsg {
			t.Fatalf("%s: IsSubMessage=%v", tc.name, f.IsSubMessage())
		}
		if f.IsString() != tc.str {
			t.Fatalf("%s: IsString=%v", tc.name, f.IsString())
		}
		if f.IsRepeated() != tc.repeated {
			t.Fatalf("%s: IsRepeated=%v", tc.name, f.IsRepeated())
		}
		if f.NeedsManaged() != tc.managed {
			t.Fatalf("%s: NeedsManaged=%v", tc.name, f.NeedsManaged())
		}
		if f.ElemNeedsManaged() != tc.elemManaged {
			t.Fatalf("%s: ElemNeedsManaged=%v", tc.name, f.ElemNeedsManaged())
		}
		f.release()
	}
}

func TestFieldRefTypes(t *testing.T) {
	testlog.Start(t)
	pool := intern.NewPool()

	rep := mkField(t, pool, descriptor.Field{
		Name: "rs", Number: 1, Type: descriptor.TypeString, Label: descriptor.LabelRepeated,
	})
	if rep.SlotRefType() != RefArray {
		t.Fatalf("repeated slot ref type: %v", rep.SlotRefType())
	}
	if rep.ElemRefType() != RefString {
		t.Fatalf("repeated string elem ref type: %v", rep.ElemRefType())
	}
	rep.release()

	msg := mkField(t, pool, descriptor.Field{
		Name: "m", Number: 2, Type: descriptor.TypeMessage, Label: descriptor.LabelOptional, TypeName: "M",
	})
	if msg.SlotRefType() != RefMessage || msg.ElemRefType() != RefMessage {
		t.Fatalf("message ref types: %v/%v", msg.SlotRefType(), msg.ElemRefType())
	}
	msg.release()

	scalar := mkField(t, pool, descriptor.Field{
		Name: "n", Number: 3, Type: descriptor.TypeBool, Label: descriptor.LabelOptional,
	})
	if scalar.SlotRefType() != RefNone || scalar.ElemRefType() != RefNone {
		t.Fatalf("scalar ref types: %v/%v", scalar.SlotRefType(), scalar.ElemRefType())
	}
	scalar.release()
}

func TestSortFieldsDeterministic(t *testing.T) {
	testlog.Start(t)
	pool := intern.NewPool()

	build := func() []FieldDef {
		fds := []descriptor.Field{
			{Name: "e", Number: 40, Type: descriptor.TypeInt32, Label: descriptor.LabelOptional},
			{Name: "a", Number: 12, Type: descriptor.TypeInt32, Label: descriptor.LabelRequired},
			{Name: "d", Number: 3, Type: descriptor.TypeInt32, Label: descriptor.LabelOptional},
			{Name: "c", Number: 25, Type: descriptor.TypeInt32, Label: descriptor.LabelRequired},
			{Name: "b", Number: 2, Type: descriptor.TypeInt32, Label: descriptor.LabelRepeated},
		}
		fields := make([]FieldDef, 0, len(fds))
		for _, fd := range fds {
			fields = append(fields, mkField(t, pool, fd))
		}
		return fields
	}

	first := build()
	SortFields(first)
	second := build()
	SortFields(second)

	want := []string{"a", "c", "b", "d", "e"}
	for i, name := range want {
		if first[i].Name() != name {
			t.Fatalf("sorted slot %d holds %s, want %s", i, first[i].Name(), name)
		}
		if second[i].Name() != first[i].Name() {
			t.Fatalf("sort not reproducible at slot %d", i)
		}
	}

	for i := range first {
		first[i].release()
		second[i].release()
	}
}
