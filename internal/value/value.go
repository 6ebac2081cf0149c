// Package value implements the immutable document tree (V in the design
// doc): a parsed JSON value augmented, once placed under a parent, with its
// key, index, parent link and depth.
package value

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable node of the parsed document.
type Value struct {
	kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string

	// children holds the ordered children for arrays and objects. For
	// objects, keys[i] names children[i]; for arrays keys[i] is the
	// decimal rendering of i.
	children []*Value
	keys     []string

	key    string
	index  int
	parent *Value
	depth  int
}

func (v *Value) Kind() Kind       { return v.kind }
func (v *Value) Bool() bool       { return v.boolVal }
func (v *Value) Int() int64       { return v.intVal }
func (v *Value) Float() float64   { return v.floatVal }
func (v *Value) String() string   { return v.stringVal }
func (v *Value) Key() string      { return v.key }
func (v *Value) Index() int       { return v.index }
func (v *Value) Parent() *Value   { return v.parent }
func (v *Value) Depth() int       { return v.depth }
func (v *Value) Len() int         { return len(v.children) }

// Children returns the ordered child values. Array index order / object
// insertion order as observed at parse time, per spec.
func (v *Value) Children() []*Value {
	return v.children
}

// ChildKey returns the key of the i-th child without materializing it.
func (v *Value) ChildKey(i int) string {
	return v.keys[i]
}

// IsContainer reports whether v is an array or object (can be expanded).
func (v *Value) IsContainer() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// Path returns the sequence of child indices from the root to v, used by
// isBefore for lexicographic ordering.
func (v *Value) Path() []int {
	var path []int
	for n := v; n.parent != nil; n = n.parent {
		path = append(path, n.index)
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FormatPath renders v's location from the document root as a jq-style
// path (".b[1].c"): object keys as ".key" (bracket-quoted when the key
// isn't a bare identifier) and array indices as "[i]". The root itself
// formats as ".".
func FormatPath(v *Value) string {
	var ancestors []*Value
	for n := v; n.parent != nil; n = n.parent {
		ancestors = append(ancestors, n)
	}

	var b strings.Builder
	for i := len(ancestors) - 1; i >= 0; i-- {
		n := ancestors[i]
		if n.parent.kind == KindArray {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(n.index))
			b.WriteByte(']')
			continue
		}
		if isBareIdent(n.key) {
			b.WriteByte('.')
			b.WriteString(n.key)
		} else {
			b.WriteString(".[")
			b.WriteString(strconv.Quote(n.key))
			b.WriteByte(']')
		}
	}
	if b.Len() == 0 {
		return "."
	}
	return b.String()
}

func isBareIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Parse decodes JSON from r into a root Value, preserving object key
// insertion order (encoding/json.Unmarshal into map[string]any does not).
func Parse(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	attach(v, nil, "", 0, 0)
	return v, nil
}

func attach(v *Value, parent *Value, key string, index, depth int) {
	v.parent = parent
	v.key = key
	v.index = index
	v.depth = depth
	for i, c := range v.children {
		childKey := v.keys[i]
		attach(c, v, childKey, i, depth+1)
	}
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("value: unexpected delimiter %q", t)
		}
	case bool:
		return &Value{kind: KindBool, boolVal: t}, nil
	case nil:
		return &Value{kind: KindNull}, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return &Value{kind: KindInt, intVal: i}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("value: bad number %q: %w", t, err)
		}
		return &Value{kind: KindFloat, floatVal: f}, nil
	case string:
		return &Value{kind: KindString, stringVal: t}, nil
	default:
		return nil, fmt.Errorf("value: unexpected token %T", tok)
	}
}

func parseArray(dec *json.Decoder) (*Value, error) {
	v := &Value{kind: KindArray}
	for dec.More() {
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		v.children = append(v.children, child)
		v.keys = append(v.keys, strconv.Itoa(len(v.children)-1))
	}
	// consume closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

func parseObject(dec *json.Decoder) (*Value, error) {
	v := &Value{kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("value: expected object key, got %T", keyTok)
		}
		child, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		v.children = append(v.children, child)
		v.keys = append(v.keys, key)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}
