package table

import "testing"

type payload struct {
	name  string
	value int
}

func TestNumInsertLookup(t *testing.T) {
	tbl := NewNum[payload](4)
	if !tbl.Insert(7, payload{"seven", 70}) {
		t.Fatalf("insert rejected")
	}
	if !tbl.Insert(1, payload{"one", 10}) {
		t.Fatalf("insert rejected")
	}
	if tbl.Insert(7, payload{"dup", 0}) {
		t.Fatalf("duplicate key accepted")
	}
	if tbl.Len() != 2 {
		t.Fatalf("len: %d", tbl.Len())
	}

	e := tbl.Lookup(7)
	if e == nil || e.name != "seven" {
		t.Fatalf("lookup(7): %+v", e)
	}
	if tbl.Lookup(2) != nil {
		t.Fatalf("expected nil for missing key")
	}
}

func TestNumEntryPointersStable(t *testing.T) {
	tbl := NewNum[payload](2)
	tbl.Insert(1, payload{"a", 1})
	tbl.Insert(2, payload{"b", 2})
	first := tbl.Lookup(1)
	second := tbl.Lookup(1)
	if first != second {
		t.Fatalf("lookup returned distinct entry addresses")
	}
	first.value = 99
	if tbl.Lookup(1).value != 99 {
		t.Fatalf("entry mutation not visible through table")
	}
}

func TestNumRangeInsertionOrder(t *testing.T) {
	tbl := NewNum[payload](3)
	tbl.Insert(30, payload{"c", 3})
	tbl.Insert(10, payload{"a", 1})
	tbl.Insert(20, payload{"b", 2})

	var keys []uint32
	tbl.Range(func(key uint32, _ *payload) bool {
		keys = append(keys, key)
		return true
	})
	want := []uint32{30, 10, 20}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("range order: %v", keys)
		}
	}
}

func TestStrInsertLookup(t *testing.T) {
	tbl := NewStr[payload](4)
	if !tbl.Insert("alpha", payload{"alpha", 1}) {
		t.Fatalf("insert rejected")
	}
	if tbl.Insert("alpha", payload{"dup", 0}) {
		t.Fatalf("duplicate key accepted")
	}
	e := tbl.Lookup("alpha")
	if e == nil || e.value != 1 {
		t.Fatalf("lookup(alpha): %+v", e)
	}
	if tbl.Lookup("beta") != nil {
		t.Fatalf("expected nil for missing key")
	}
}

func TestStrRangeStopsEarly(t *testing.T) {
	tbl := NewStr[int](3)
	tbl.Insert("a", 1)
	tbl.Insert("b", 2)
	tbl.Insert("c", 3)

	seen := 0
	tbl.Range(func(string, *int) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Fatalf("range visited %d entries", seen)
	}
}
