package tracelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// placeholder is one parsed %-directive:
//
//	%[index$|(key)][+][0|'c][-][width][.precision]verb
type placeholder struct {
	raw       string
	index     int // 1-based explicit argument, 0 for the next one
	key       string
	plus      bool
	pad       rune
	left      bool
	width     int
	precision int // -1 when absent
	verb      byte
}

const verbs = "bcdefgijostTuvxX"

// maxWidth bounds width and precision; larger values are not placeholders.
const maxWidth = 1 << 16

// Sprintf substitutes args into template.
//
// Supported verbs: %s string, %j JSON, %d/%i integer, %u unsigned, %f float,
// %e exponent, %g shortest float, %x/%X/%o/%b integer bases, %c character,
// %t truthiness, %T type, %v value and %% for a literal percent. Arguments
// may be picked explicitly with %2$s, or by key from a map first argument
// with %(name)s.
//
// Sprintf never fails: a placeholder without an argument is copied as-is, an
// unknown verb is copied as-is, surplus arguments are dropped and a value that
// does not fit a numeric verb is rendered as %s. A directive whose width or
// precision exceeds 65536 is copied as literal text.
func Sprintf(template string, args ...any) string {
	var b strings.Builder
	b.Grow(len(template))

	next := 0
	for i := 0; i < len(template); {
		j := strings.IndexByte(template[i:], '%')
		if j < 0 {
			b.WriteString(template[i:])
			break
		}
		b.WriteString(template[i : i+j])
		i += j

		if strings.HasPrefix(template[i:], "%%") {
			b.WriteByte('%')
			i += 2
			continue
		}

		p, n, ok := parsePlaceholder(template[i:])
		if !ok {
			b.WriteByte('%')
			i++
			continue
		}
		i += n

		arg, found := p.arg(args, &next)
		if !found {
			b.WriteString(p.raw)
			continue
		}
		b.WriteString(p.renderSafe(arg))
	}
	return b.String()
}

// renderSafe renders arg, falling back to the raw directive if rendering
// panics.
func (p placeholder) renderSafe(arg any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = p.raw
		}
	}()
	return p.render(arg)
}

// atoiBounded parses a run of digits, rejecting values above maxWidth.
func atoiBounded(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxWidth {
		return 0, false
	}
	return n, true
}

func parsePlaceholder(s string) (placeholder, int, bool) {
	p := placeholder{pad: ' ', precision: -1}
	i := 1 // skip '%'

	// Argument selector.
	if i < len(s) && s[i] >= '1' && s[i] <= '9' {
		k := i
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k < len(s) && s[k] == '$' {
			n, err := strconv.Atoi(s[i:k])
			if err != nil {
				return p, 0, false
			}
			p.index = n
			i = k + 1
		}
	} else if i < len(s) && s[i] == '(' {
		end := strings.IndexByte(s[i:], ')')
		if end <= 1 {
			return p, 0, false
		}
		p.key = s[i+1 : i+end]
		i += end + 1
	}

	if i < len(s) && s[i] == '+' {
		p.plus = true
		i++
	}

	// Pad character: '0' or a quote followed by any character but '$'.
	if i < len(s) && s[i] == '0' {
		p.pad = '0'
		i++
	} else if i < len(s) && s[i] == '\'' {
		r, size := utf8.DecodeRuneInString(s[i+1:])
		if r == utf8.RuneError || r == '$' {
			return p, 0, false
		}
		p.pad = r
		i += 1 + size
	}

	if i < len(s) && s[i] == '-' {
		p.left = true
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i > start {
		n, ok := atoiBounded(s[start:i])
		if !ok {
			return p, 0, false
		}
		p.width = n
	}

	if i < len(s) && s[i] == '.' {
		k := i + 1
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k == i+1 {
			return p, 0, false
		}
		n, ok := atoiBounded(s[i+1 : k])
		if !ok {
			return p, 0, false
		}
		p.precision = n
		i = k
	}

	if i >= len(s) || strings.IndexByte(verbs, s[i]) < 0 {
		return p, 0, false
	}
	p.verb = s[i]
	i++
	p.raw = s[:i]
	return p, i, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// arg picks the argument p refers to. Implicit placeholders advance *next.
func (p placeholder) arg(args []any, next *int) (any, bool) {
	switch {
	case p.key != "":
		if len(args) == 0 {
			return nil, false
		}
		return lookupKey(args[0], p.key)
	case p.index > 0:
		if p.index > len(args) {
			return nil, false
		}
		return args[p.index-1], true
	default:
		if *next >= len(args) {
			return nil, false
		}
		v := args[*next]
		*next++
		return v, true
	}
}

// lookupKey resolves a dotted key path through nested string-keyed maps.
func lookupKey(root any, key string) (any, bool) {
	cur := root
	for _, part := range strings.Split(key, ".") {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]string:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func (p placeholder) render(arg any) string {
	var sign, body string

	switch p.verb {
	case 's':
		body = truncate(stringify(arg), p.precision)
	case 'v':
		body = truncate(fmt.Sprint(arg), p.precision)
	case 'j':
		body = jsonify(arg, p.precision)
	case 'T':
		body = truncate(fmt.Sprintf("%T", arg), p.precision)
	case 't':
		body = truncate(strconv.FormatBool(truthy(arg)), p.precision)
	case 'c':
		n, ok := toInt(arg)
		if !ok {
			return p.align(stringify(arg), "")
		}
		body = string(rune(n))
	case 'd', 'i':
		n, ok := toInt(arg)
		if !ok {
			return p.align(stringify(arg), "")
		}
		sign, body = splitSign(strconv.FormatInt(n, 10))
	case 'u':
		n, ok := toInt(arg)
		if !ok {
			return p.align(stringify(arg), "")
		}
		body = strconv.FormatUint(unsigned(n), 10)
	case 'x', 'X', 'o', 'b':
		n, ok := toInt(arg)
		if !ok {
			return p.align(stringify(arg), "")
		}
		body = strconv.FormatUint(unsigned(n), radix(p.verb))
		if p.verb == 'X' {
			body = strings.ToUpper(body)
		}
	case 'f', 'e', 'g':
		f, ok := toFloat(arg)
		if !ok {
			return p.align(stringify(arg), "")
		}
		sign, body = splitSign(strconv.FormatFloat(f, p.verb, p.precision, 64))
	}

	if p.plus && sign == "" && isSigned(p.verb) {
		sign = "+"
	}
	return p.align(body, sign)
}

// align applies width and alignment. Zero padding goes between sign and digits.
func (p placeholder) align(body, sign string) string {
	n := p.width - utf8.RuneCountInString(sign+body)
	if n <= 0 {
		return sign + body
	}
	fill := strings.Repeat(string(p.pad), n)
	switch {
	case p.left:
		return sign + body + fill
	case p.pad == '0':
		return sign + fill + body
	default:
		return fill + sign + body
	}
}

// unsigned reinterprets n for the unsigned verbs. Negative values wrap to 32
// bits, so %u of -1 is 4294967295.
func unsigned(n int64) uint64 {
	if n < 0 {
		return uint64(uint32(n))
	}
	return uint64(n)
}

func radix(verb byte) int {
	switch verb {
	case 'o':
		return 8
	case 'b':
		return 2
	default:
		return 16
	}
}

func isSigned(verb byte) bool {
	return strings.IndexByte("difeg", verb) >= 0
}

func splitSign(s string) (string, string) {
	if strings.HasPrefix(s, "-") {
		return "-", s[1:]
	}
	return "", s
}

func truncate(s string, precision int) string {
	if precision < 0 || utf8.RuneCountInString(s) <= precision {
		return s
	}
	return string([]rune(s)[:precision])
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		// fmt handles error and Stringer values and recovers their panics.
		return fmt.Sprint(v)
	}
}

// jsonify marshals v without HTML escaping; precision > 0 indents by that
// many spaces. Values that cannot be marshalled fall back to stringify.
func jsonify(v any, precision int) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if precision > 0 {
		enc.SetIndent("", strings.Repeat(" ", precision))
	}
	if err := enc.Encode(v); err != nil {
		return stringify(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

func toInt(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(f), err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	case reflect.String:
		if i, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
