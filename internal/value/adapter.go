package value

import (
	"fmt"
	"strconv"

	"github.com/cansyan/jsonbrowse/internal/format"
	"github.com/cansyan/jsonbrowse/internal/style"
)

var (
	keyColor    = mustColor("blue")
	stringColor = mustColor("green")
	numberColor = mustColor("cyan")
	boolColor   = mustColor("yellow")
	nullColor   = mustColor("red")
	punctColor  = mustColor("white")
)

func mustColor(name string) style.Spec {
	spec, ok := style.Named(name)
	if !ok {
		return style.Default
	}
	return spec
}

func keyLabel(v *Value) format.F {
	if v.Parent() == nil {
		return format.Literal("")
	}
	quoted := v.Key()
	if v.Parent().Kind() == KindObject {
		quoted = strconv.Quote(quoted)
	}
	return format.Color(style.Foreground, keyColor, format.Literal(quoted))
}

func scalarLabel(v *Value) format.F {
	switch v.Kind() {
	case KindString:
		// Quote marks are added around the raw content rather than via
		// strconv.Quote on the whole string, so a real tab or control byte
		// reaches format.Literal unescaped and gets format.go's
		// literal-level tab-expansion/caret-notation treatment instead of
		// being rendered as a two-character backslash escape.
		return format.Color(style.Foreground, stringColor, format.Concat(
			format.Literal(`"`),
			format.Literal(v.String()),
			format.Literal(`"`),
		))
	case KindInt:
		return format.Color(style.Foreground, numberColor, format.Literal(strconv.FormatInt(v.Int(), 10)))
	case KindFloat:
		return format.Color(style.Foreground, numberColor, format.Literal(strconv.FormatFloat(v.Float(), 'g', -1, 64)))
	case KindBool:
		return format.Color(style.Foreground, boolColor, format.Literal(strconv.FormatBool(v.Bool())))
	case KindNull:
		return format.Color(style.Foreground, nullColor, format.Literal("null"))
	default:
		return format.Literal("")
	}
}

func summary(v *Value) string {
	n := v.Len()
	switch v.Kind() {
	case KindArray:
		if n == 1 {
			return "[1 item]"
		}
		return fmt.Sprintf("[%d items]", n)
	case KindObject:
		if n == 1 {
			return "{1 key}"
		}
		return fmt.Sprintf("{%d keys}", n)
	default:
		return ""
	}
}

func openBrace(v *Value) string {
	if v.Kind() == KindArray {
		return "["
	}
	return "{"
}

// Content is the styled full representation of v shown when its node is
// collapsed: the key (if any) plus the scalar value, or the key plus a
// child-count summary for containers.
func Content(v *Value) format.F {
	if v.Parent() == nil {
		if v.IsContainer() {
			return format.Literal(summary(v))
		}
		return scalarLabel(v)
	}
	key := keyLabel(v)
	sep := format.Color(style.Foreground, punctColor, format.Literal(": "))
	if v.IsContainer() {
		return format.Concat(key, sep, format.Literal(summary(v)))
	}
	return format.Concat(key, sep, scalarLabel(v))
}

// Placeholder is the shortened representation shown when v's node is
// expanded — typically just the key, since v's children render as their
// own separate rows below it.
func Placeholder(v *Value) format.F {
	if v.Parent() == nil {
		return format.Color(style.Foreground, punctColor, format.Literal(openBrace(v)))
	}
	return format.Concat(
		keyLabel(v),
		format.Color(style.Foreground, punctColor, format.Literal(":")),
	)
}
