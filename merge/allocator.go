package merge

import "pdfmerge/ir/raw"

// allocator hands out non-overlapping object-number ranges as source
// documents are folded in. nextFree starts at 1 and always points at
// the first number no adopted object uses.
type allocator struct {
	nextFree int
}

func newAllocator() *allocator {
	return &allocator{nextFree: 1}
}

// claim reserves room for a source document whose highest object number
// is sourceMax and returns the offset to add to every number in it.
// Source numbering starts at 1, so shifted numbers occupy
// [offset+1, offset+sourceMax].
func (a *allocator) claim(sourceMax int) int {
	offset := a.nextFree - 1
	a.nextFree = offset + sourceMax + 1
	return offset
}

// next reserves and returns a single fresh object number.
func (a *allocator) next() int {
	n := a.nextFree
	a.nextFree++
	return n
}

// shiftDocument renumbers every object in doc by offset, rewriting all
// indirect references in dictionaries, arrays, stream dictionaries and
// the trailer. Generation numbers carry over unchanged.
func shiftDocument(doc *raw.Document, offset int) {
	if offset == 0 {
		return
	}
	shifted := make(map[raw.ObjectRef]raw.Object, len(doc.Objects))
	for ref, obj := range doc.Objects {
		ref.Num += offset
		shifted[ref] = shiftObject(obj, offset)
	}
	doc.Objects = shifted
	doc.MaxObjNum += offset
	if doc.Trailer != nil {
		doc.Trailer = shiftObject(doc.Trailer, offset).(*raw.DictObj)
	}
}

func shiftObject(obj raw.Object, offset int) raw.Object {
	switch v := obj.(type) {
	case raw.RefObj:
		v.R.Num += offset
		return v
	case *raw.ArrayObj:
		items := make([]raw.Object, len(v.Items))
		for i, it := range v.Items {
			items[i] = shiftObject(it, offset)
		}
		return &raw.ArrayObj{Items: items}
	case *raw.DictObj:
		kv := make(map[string]raw.Object, len(v.KV))
		for k, val := range v.KV {
			kv[k] = shiftObject(val, offset)
		}
		return &raw.DictObj{KV: kv}
	case *raw.StreamObj:
		return raw.Stream(shiftObject(v.Dict, offset).(*raw.DictObj), v.Data)
	default:
		return obj
	}
}

// shiftRefs applies the same offset to a page reference list.
func shiftRefs(refs []raw.ObjectRef, offset int) []raw.ObjectRef {
	out := make([]raw.ObjectRef, len(refs))
	for i, r := range refs {
		r.Num += offset
		out[i] = r
	}
	return out
}
