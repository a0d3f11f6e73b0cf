package raw

// Concrete object kinds.

// NameObj is a PDF name, stored without the leading slash.
type NameObj struct{ Val string }

func (n NameObj) Kind() string { return "name" }

// NumberObj holds either an integer or a real value.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (n NumberObj) Kind() string { return "number" }
func (n NumberObj) Int() int64   { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// BoolObj is a PDF boolean.
type BoolObj struct{ V bool }

func (b BoolObj) Kind() string { return "boolean" }

// NullObj is the PDF null object.
type NullObj struct{}

func (NullObj) Kind() string { return "null" }

// StringObj is a PDF string. Hex records which written form the string came
// from so the writer can round-trip it.
type StringObj struct {
	Bytes []byte
	Hex   bool
}

func (s StringObj) Kind() string { return "string" }

// ArrayObj is a PDF array.
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Kind() string { return "array" }
func (a *ArrayObj) Len() int     { return len(a.Items) }
func (a *ArrayObj) Get(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// DictObj is a PDF dictionary keyed by name (without the slash).
type DictObj struct{ KV map[string]Object }

func (d *DictObj) Kind() string { return "dict" }
func (d *DictObj) Len() int     { return len(d.KV) }
func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}
func (d *DictObj) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}
func (d *DictObj) Delete(key string) { delete(d.KV, key) }
func (d *DictObj) Has(key string) bool {
	_, ok := d.KV[key]
	return ok
}

// GetName returns the string value of a name entry.
func (d *DictObj) GetName(key string) (string, bool) {
	o, ok := d.KV[key]
	if !ok {
		return "", false
	}
	n, ok := o.(NameObj)
	if !ok {
		return "", false
	}
	return n.Val, true
}

// GetInt returns the value of an integer entry.
func (d *DictObj) GetInt(key string) (int64, bool) {
	o, ok := d.KV[key]
	if !ok {
		return 0, false
	}
	n, ok := o.(NumberObj)
	if !ok || !n.IsInt {
		return 0, false
	}
	return n.I, true
}

// StreamObj pairs a stream dictionary with its raw (still encoded) data.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) Kind() string { return "stream" }

// RefObj is an indirect object reference.
type RefObj struct{ R ObjectRef }

func (r RefObj) Kind() string { return "ref" }

// Constructors.

func Name(v string) NameObj     { return NameObj{Val: v} }
func Int(i int64) NumberObj     { return NumberObj{I: i, IsInt: true} }
func Real(f float64) NumberObj  { return NumberObj{F: f} }
func Bool(v bool) BoolObj       { return BoolObj{V: v} }
func Str(b []byte) StringObj    { return StringObj{Bytes: b} }
func Array(items ...Object) *ArrayObj {
	return &ArrayObj{Items: items}
}
func Dict() *DictObj { return &DictObj{KV: make(map[string]Object)} }
func Stream(dict *DictObj, data []byte) *StreamObj {
	return &StreamObj{Dict: dict, Data: data}
}
func Ref(num, gen int) RefObj { return RefObj{R: ObjectRef{Num: num, Gen: gen}} }
