package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"pdfmerge/filters"
	"pdfmerge/ir/raw"
	"pdfmerge/scanner"
	"pdfmerge/xref"
)

// objectLoader materializes objects by xref location, caching decoded
// object streams so each is decompressed once.
type objectLoader struct {
	reader io.ReaderAt
	table  *xref.Table
	limits Limits
	sc     scanner.Scanner
	objstm map[int]map[int]raw.Object
}

func newObjectLoader(r io.ReaderAt, table *xref.Table, limits Limits) *objectLoader {
	return &objectLoader{reader: r, table: table, limits: limits}
}

func (o *objectLoader) load(objNum int) (raw.ObjectRef, raw.Object, error) {
	if offset, gen, ok := o.table.Lookup(objNum); ok {
		ref := raw.ObjectRef{Num: objNum, Gen: gen}
		obj, err := o.loadAt(objNum, offset, gen)
		return ref, obj, err
	}
	if stmNum, _, ok := o.table.ObjStream(objNum); ok {
		ref := raw.ObjectRef{Num: objNum, Gen: 0} // compressed objects are always gen 0
		obj, err := o.loadFromObjectStream(objNum, stmNum)
		return ref, obj, err
	}
	return raw.ObjectRef{}, nil, errors.New("object not found in xref")
}

func (o *objectLoader) loadAt(objNum int, offset int64, gen int) (raw.Object, error) {
	if o.sc == nil {
		o.sc = scanner.New(o.reader, o.scannerConfig())
	}
	return o.scanObject(o.sc, objNum, offset, gen)
}

func (o *objectLoader) scannerConfig() scanner.Config {
	return scanner.Config{
		MaxStringLength: o.limits.MaxStringLength,
		MaxStreamLength: o.limits.MaxStreamLength,
	}
}

func (o *objectLoader) scanObject(s scanner.Scanner, objNum int, offset int64, gen int) (raw.Object, error) {
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tr := newTokenReader(s)

	tokNum, err := tr.next()
	if err != nil {
		return nil, err
	}
	if tokNum.Type != scanner.TokenNumber || !tokNum.IsInt || int(tokNum.Int) != objNum {
		return nil, errors.New("object header number mismatch")
	}
	tokGen, err := tr.next()
	if err != nil {
		return nil, err
	}
	if tokGen.Type != scanner.TokenNumber || !tokGen.IsInt || int(tokGen.Int) != gen {
		return nil, errors.New("object header generation mismatch")
	}
	tokObj, err := tr.next()
	if err != nil {
		return nil, err
	}
	if tokObj.Type != scanner.TokenKeyword || tokObj.Str != "obj" {
		return nil, errors.New("expected obj keyword")
	}

	obj, err := parseObject(tr)
	if err != nil {
		return nil, err
	}
	if dict, ok := obj.(*raw.DictObj); ok {
		hint, err := o.resolveStreamLength(dict)
		if err != nil {
			return nil, err
		}
		tr.setStreamLengthHint(hint)
		next, err := tr.next()
		if err == nil {
			if next.Type == scanner.TokenStream {
				obj = raw.Stream(dict, next.Bytes)
			} else {
				tr.unread(next)
			}
		} else if !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return obj, nil
}

// resolveStreamLength returns the /Length of a would-be stream dictionary,
// following one level of indirection when the length is an indirect object.
func (o *objectLoader) resolveStreamLength(dict *raw.DictObj) (int64, error) {
	val, ok := dict.Get("Length")
	if !ok {
		return -1, nil
	}
	switch v := val.(type) {
	case raw.NumberObj:
		if v.IsInt {
			return v.I, nil
		}
		return -1, nil
	case raw.RefObj:
		offset, gen, ok := o.table.Lookup(v.R.Num)
		if !ok {
			return 0, fmt.Errorf("length object %d missing from xref", v.R.Num)
		}
		// fresh scanner so the shared cursor survives the detour
		tmp := scanner.New(o.reader, o.scannerConfig())
		obj, err := o.scanObject(tmp, v.R.Num, offset, gen)
		if err != nil {
			return 0, err
		}
		if num, ok := obj.(raw.NumberObj); ok && num.IsInt {
			return num.I, nil
		}
		return 0, fmt.Errorf("length reference %v is not an integer", v.R)
	default:
		return -1, nil
	}
}

// loadFromObjectStream keys the decoded map by object number, so the
// xref index of the entry is not needed here.
func (o *objectLoader) loadFromObjectStream(objNum, stmNum int) (raw.Object, error) {
	if o.objstm == nil {
		o.objstm = make(map[int]map[int]raw.Object)
	}
	objs, ok := o.objstm[stmNum]
	if !ok {
		decoded, err := o.decodeObjectStream(stmNum)
		if err != nil {
			return nil, err
		}
		objs = decoded
		o.objstm[stmNum] = objs
	}
	obj, ok := objs[objNum]
	if !ok {
		return nil, fmt.Errorf("object %d not found in object stream %d", objNum, stmNum)
	}
	return obj, nil
}

func (o *objectLoader) decodeObjectStream(stmNum int) (map[int]raw.Object, error) {
	offset, gen, ok := o.table.Lookup(stmNum)
	if !ok {
		return nil, fmt.Errorf("object stream %d missing from xref", stmNum)
	}
	streamObj, err := o.loadAt(stmNum, offset, gen)
	if err != nil {
		return nil, err
	}
	st, ok := streamObj.(*raw.StreamObj)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", stmNum)
	}
	n, _ := st.Dict.GetInt("N")
	first, _ := st.Dict.GetInt("First")
	data := st.Data

	names, params := filters.ExtractFilters(st.Dict)
	if len(names) > 0 {
		pipeline := filters.NewDefault(filters.Limits{MaxDecompressedSize: o.limits.MaxDecompressedSize})
		data, err = pipeline.Decode(data, names, params)
		if err != nil {
			return nil, fmt.Errorf("decode object stream %d: %w", stmNum, err)
		}
	}
	if first < 0 || first > int64(len(data)) {
		return nil, errors.New("object stream First exceeds length")
	}

	// header: N pairs of "objNum offset"
	hs := scanner.New(bytes.NewReader(data[:first]), o.scannerConfig())
	pairs := make([]int64, 0, 2*n)
	for int64(len(pairs)) < 2*n {
		tok, err := hs.Next()
		if err != nil {
			return nil, fmt.Errorf("object stream %d header: %w", stmNum, err)
		}
		if tok.Type != scanner.TokenNumber || !tok.IsInt {
			return nil, errors.New("object stream header malformed")
		}
		pairs = append(pairs, tok.Int)
	}

	body := data[first:]
	objs := make(map[int]raw.Object, n)
	for i := int64(0); i < n; i++ {
		num := int(pairs[2*i])
		off := pairs[2*i+1]
		if off < 0 || off > int64(len(body)) {
			return nil, errors.New("object stream offset out of range")
		}
		bs := scanner.New(bytes.NewReader(body[off:]), o.scannerConfig())
		obj, err := parseObject(newTokenReader(bs))
		if err != nil {
			return nil, fmt.Errorf("object stream %d, object %d: %w", stmNum, num, err)
		}
		objs[num] = obj
	}
	return objs, nil
}
