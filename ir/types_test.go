package ir

import "testing"

type typeEqualTest struct {
	A, B  Type
	Equal bool
}

func TestTypeEqual(t *testing.T) {
	for i, test := range []typeEqualTest{
		{Int(32), Int(32), true},
		{Int(32), Int(16), false},
		{Int(32), Float(32), false},
		{Float(64), Float(64), true},
		{Ptr(Int(8)), Ptr(Int(8)), true},
		{Ptr(Int(8)), Ptr(Int(16)), false},
		{Ptr(Int(8)), Int(8), false},
		{Aggregate(Int(32), Float(32)), Aggregate(Int(32), Float(32)), true},
		{Aggregate(Int(32)), Aggregate(Int(32), Int(32)), false},
		{&OpaqueType{Name: "FILE"}, &OpaqueType{Name: "FILE"}, true},
		{&OpaqueType{Name: "FILE"}, &OpaqueType{Name: "DIR"}, false},
	} {
		if got := test.A.Equal(test.B); got != test.Equal {
			t.Errorf("test %d: %v.Equal(%v) = %t, want %t", i, test.A, test.B, got, test.Equal)
		}
	}
}

type typeStringTest struct {
	Type Type
	Str  string
}

func TestTypeString(t *testing.T) {
	for i, test := range []typeStringTest{
		{Int(1), "i1"},
		{Int(32), "i32"},
		{Float(80), "f80"},
		{Ptr(Int(8)), "i8*"},
		{Ptr(Ptr(Int(32))), "i32**"},
		{Aggregate(Int(32), Float(64)), "{i32, f64}"},
		{Aggregate(Ptr(Int(8)), Aggregate(Int(16), Int(16))), "{i8*, {i16, i16}}"},
		{&OpaqueType{Name: "FILE"}, "FILE"},
	} {
		if got := test.Type.String(); got != test.Str {
			t.Errorf("test %d: got %q, want %q", i, got, test.Str)
		}
	}
}

func TestParseType(t *testing.T) {
	for i, str := range []string{
		"i1", "i32", "f16", "f80",
		"i8*", "i32**", "f64*",
		"{i32, f64}", "{i8*, {i16, i16}}", "{i32, f64}*",
		"FILE", "FILE*",
	} {
		typ, err := ParseType(str)
		if err != nil {
			t.Errorf("test %d: ParseType(%q) failed: %v", i, str, err)
			continue
		}
		if got := typ.String(); got != str {
			t.Errorf("test %d: ParseType(%q).String() = %q", i, str, got)
		}
	}

	for i, str := range []string{
		"", "i32 x", "{i32", "{}", "f13", "i0", "*i32", "i32,",
	} {
		if typ, err := ParseType(str); err == nil {
			t.Errorf("test %d: ParseType(%q) = %v, want error", i, str, typ)
		}
	}
}

type validElemTest struct {
	Type  Type
	Valid bool
}

func TestValidElemType(t *testing.T) {
	for i, test := range []validElemTest{
		{nil, false},
		{Int(32), true},
		{Float(16), true},
		{Ptr(&OpaqueType{Name: "FILE"}), true},
		{&OpaqueType{Name: "FILE"}, false},
		{Aggregate(), false},
		{Aggregate(Int(8)), true},
	} {
		if got := ValidElemType(test.Type); got != test.Valid {
			t.Errorf("test %d: ValidElemType(%v) = %t, want %t", i, test.Type, got, test.Valid)
		}
	}
}

type sizeOfTest struct {
	Type      Type
	WordBytes int
	Size      int
}

func TestSizeOf(t *testing.T) {
	for i, test := range []sizeOfTest{
		{Int(1), 4, 1},
		{Int(8), 4, 1},
		{Int(24), 4, 3},
		{Int(32), 4, 4},
		{Float(80), 4, 10},
		{Ptr(Int(8)), 4, 4},
		{Ptr(Int(8)), 8, 8},
		{Aggregate(Int(32), Float(64), Ptr(Int(8))), 4, 16},
	} {
		if got := SizeOf(test.Type, test.WordBytes); got != test.Size {
			t.Errorf("test %d: SizeOf(%v, %d) = %d, want %d", i, test.Type, test.WordBytes, got, test.Size)
		}
	}
}

func TestTypeConstructorPanics(t *testing.T) {
	checkPanic(t, 0, "ir: zero width integer type", func() { Int(0) })
	checkPanic(t, 1, "ir: unsupported floating-point width: 48", func() { Float(48) })
	checkPanic(t, 2, "ir: pointer to nil type", func() { Ptr(nil) })
}
