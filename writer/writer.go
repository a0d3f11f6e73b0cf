package writer

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"pdfmerge/ir/raw"
)

// Config controls the serialized output.
type Config struct {
	// Version is the header version, e.g. "1.7". Falls back to the
	// document's own version, then to 1.7.
	Version string
}

const defaultVersion = "1.7"

// binary comment after the header marks the file as 8-bit data
var headerComment = []byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'}

// SerializeObject renders one indirect object, "N G obj ... endobj".
// Dictionary keys are emitted in sorted order so output is deterministic.
func SerializeObject(ref raw.ObjectRef, obj raw.Object) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes()
}

func serializePrimitive(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return serializeName(v.Val)
	case raw.NumberObj:
		if v.IsInt {
			return []byte(strconv.FormatInt(v.I, 10))
		}
		// 'f' format: PDF readers do not accept exponent notation
		return []byte(strconv.FormatFloat(v.F, 'f', -1, 64))
	case raw.BoolObj:
		if v.V {
			return []byte("true")
		}
		return []byte("false")
	case raw.NullObj:
		return []byte("null")
	case raw.StringObj:
		if v.Hex {
			return serializeHexString(v.Bytes)
		}
		return serializeLiteralString(v.Bytes)
	case *raw.ArrayObj:
		var b bytes.Buffer
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.Write(serializePrimitive(it))
		}
		b.WriteByte(']')
		return b.Bytes()
	case *raw.DictObj:
		return serializeDict(v)
	case *raw.StreamObj:
		var b bytes.Buffer
		// Length always reflects the payload actually written
		v.Dict.Set("Length", raw.Int(int64(len(v.Data))))
		b.Write(serializeDict(v.Dict))
		b.WriteString("\nstream\n")
		b.Write(v.Data)
		b.WriteString("\nendstream")
		return b.Bytes()
	case raw.RefObj:
		return []byte(fmt.Sprintf("%d %d R", v.R.Num, v.R.Gen))
	default:
		return []byte("null")
	}
}

func serializeDict(d *raw.DictObj) []byte {
	var b bytes.Buffer
	b.WriteString("<<")
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.Write(serializeName(k))
		b.WriteByte(' ')
		b.Write(serializePrimitive(d.KV[k]))
	}
	b.WriteString(">>")
	return b.Bytes()
}

func serializeName(name string) []byte {
	var b bytes.Buffer
	b.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isRegularNameChar(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "#%02X", c)
		}
	}
	return b.Bytes()
}

func isRegularNameChar(c byte) bool {
	if c <= 0x20 || c >= 0x7F || c == '#' {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func serializeLiteralString(s []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, c := range s {
		switch {
		case c == '(' || c == ')' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7F:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

func serializeHexString(s []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('<')
	for _, c := range s {
		fmt.Fprintf(&b, "%02X", c)
	}
	b.WriteByte('>')
	return b.Bytes()
}
