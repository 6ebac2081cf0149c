package value

import (
	"strings"
	"testing"
)

func TestParse_ScalarKinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind Kind
	}{
		{"int", `42`, KindInt},
		{"float", `3.14`, KindFloat},
		{"string", `"hi"`, KindString},
		{"bool", `true`, KindBool},
		{"null", `null`, KindNull},
		{"array", `[1,2]`, KindArray},
		{"object", `{"a":1}`, KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.json, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
		})
	}
}

func TestParse_PreservesObjectKeyOrder(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"z", "a", "m"}
	if got := len(v.Children()); got != len(want) {
		t.Fatalf("got %d children, want %d", got, len(want))
	}
	for i, c := range v.Children() {
		if c.Key() != want[i] {
			t.Errorf("child %d key = %q, want %q", i, c.Key(), want[i])
		}
	}
}

func TestParse_ArrayChildKeysAreDecimalIndices(t *testing.T) {
	v, err := Parse(strings.NewReader(`[10,20,30]`))
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range v.Children() {
		if c.Key() != itoa(i) {
			t.Errorf("child %d key = %q, want %q", i, c.Key(), itoa(i))
		}
		if c.Index() != i {
			t.Errorf("child %d Index() = %d, want %d", i, c.Index(), i)
		}
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	return string(b)
}

func TestParse_ParentAndDepth(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"a": {"b": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if v.Parent() != nil {
		t.Error("root should have nil parent")
	}
	if v.Depth() != 0 {
		t.Errorf("root depth = %d, want 0", v.Depth())
	}
	a := v.Children()[0]
	if a.Parent() != v {
		t.Error("a.Parent() should be root")
	}
	if a.Depth() != 1 {
		t.Errorf("a depth = %d, want 1", a.Depth())
	}
	b := a.Children()[0]
	if b.Depth() != 2 {
		t.Errorf("b depth = %d, want 2", b.Depth())
	}
	if b.Int() != 1 {
		t.Errorf("b.Int() = %d, want 1", b.Int())
	}
}

func TestValue_Path(t *testing.T) {
	v, err := Parse(strings.NewReader(`[1, {"a": [9, 9, 42]}]`))
	if err != nil {
		t.Fatal(err)
	}
	target := v.Children()[1].Children()[0].Children()[2]
	path := target.Path()
	want := []int{1, 0, 2}
	if len(path) != len(want) {
		t.Fatalf("Path() = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("Path() = %v, want %v", path, want)
		}
	}
}

func TestFormatPath_MixesObjectKeysAndArrayIndices(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"b": [0, {"c": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	target := v.Children()[0].Children()[1].Children()[0]
	if got, want := FormatPath(target), ".b[1].c"; got != want {
		t.Errorf("FormatPath() = %q, want %q", got, want)
	}
}

func TestFormatPath_RootIsADot(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"a": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := FormatPath(v), "."; got != want {
		t.Errorf("FormatPath(root) = %q, want %q", got, want)
	}
}

func TestFormatPath_QuotesKeysThatArentBareIdentifiers(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"has space": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	target := v.Children()[0]
	if got, want := FormatPath(target), `.["has space"]`; got != want {
		t.Errorf("FormatPath() = %q, want %q", got, want)
	}
}

func TestValue_IsContainerAndLen(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"a": [1,2,3], "b": "x"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsContainer() {
		t.Error("object should be a container")
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
	arr := v.Children()[0]
	if !arr.IsContainer() || arr.Len() != 3 {
		t.Errorf("array IsContainer/Len = %v/%d, want true/3", arr.IsContainer(), arr.Len())
	}
	str := v.Children()[1]
	if str.IsContainer() {
		t.Error("string should not be a container")
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"a": }`))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestParse_NonIntegerNumberFallsBackToFloat(t *testing.T) {
	v, err := Parse(strings.NewReader(`1.5e300`))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindFloat {
		t.Errorf("Kind() = %v, want %v", v.Kind(), KindFloat)
	}
}
