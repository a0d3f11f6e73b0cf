// Package raw defines the PDF object model the merge pipeline operates on:
// indirect object references, the object kinds of the PDF syntax, and the
// Document container holding one file's complete object graph.
package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Kind() string
}

// Document is the root container for one file's raw object graph.
// Encrypted mirrors the trailer's /Encrypt entry.
type Document struct {
	Objects   map[ObjectRef]Object
	Trailer   *DictObj
	Version   string // header version, e.g. "1.7"
	MaxObjNum int    // highest object number present in Objects
	Encrypted bool
}

// NewDocument returns an empty document with an initialized object map.
func NewDocument() *Document {
	return &Document{Objects: make(map[ObjectRef]Object), Trailer: Dict()}
}

// Resolve follows indirect references until a direct object is reached.
// Unresolvable references yield NullObj, matching how readers treat
// dangling refs.
func (d *Document) Resolve(obj Object) Object {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(RefObj)
		if !ok {
			return obj
		}
		next, ok := d.Objects[ref.R]
		if !ok {
			return NullObj{}
		}
		obj = next
	}
	return NullObj{}
}

// Catalog resolves the trailer's /Root entry to the document catalog.
func (d *Document) Catalog() (*DictObj, bool) {
	if d.Trailer == nil {
		return nil, false
	}
	rootObj, ok := d.Trailer.Get("Root")
	if !ok {
		return nil, false
	}
	dict, ok := d.Resolve(rootObj).(*DictObj)
	return dict, ok
}
