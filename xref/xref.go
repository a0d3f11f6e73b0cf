// Package xref locates and parses cross-reference information: classic
// tables, xref streams, hybrid files carrying both, and /Prev chains.
package xref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"pdfmerge/filters"
	"pdfmerge/ir/raw"
	"pdfmerge/scanner"
)

// Table maps object numbers to their location: a byte offset for directly
// stored objects, or an (object stream, index) pair for compressed ones.
type Table struct {
	entries  map[int]entry
	inStream map[int]streamEntry
	trailer  *raw.DictObj
}

type entry struct {
	offset int64
	gen    int
}

type streamEntry struct {
	streamNum int
	index     int
}

func newTable() *Table {
	return &Table{
		entries:  make(map[int]entry),
		inStream: make(map[int]streamEntry),
		trailer:  raw.Dict(),
	}
}

// Lookup returns the byte offset and generation for a directly stored object.
func (t *Table) Lookup(objNum int) (offset int64, gen int, found bool) {
	e, ok := t.entries[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

// ObjStream returns the containing object stream and index for a compressed
// object.
func (t *Table) ObjStream(objNum int) (streamNum, index int, found bool) {
	e, ok := t.inStream[objNum]
	if !ok {
		return 0, 0, false
	}
	return e.streamNum, e.index, true
}

// Objects returns every known object number in ascending order.
func (t *Table) Objects() []int {
	out := make([]int, 0, len(t.entries)+len(t.inStream))
	for n := range t.entries {
		out = append(out, n)
	}
	for n := range t.inStream {
		if _, dup := t.entries[n]; !dup {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// Trailer returns the merged trailer dictionary; for chained files the
// newest section's entries win.
func (t *Table) Trailer() *raw.DictObj { return t.trailer }

// addEntry records an object location unless a newer section already did.
func (t *Table) addEntry(objNum int, e entry) {
	if _, ok := t.entries[objNum]; ok {
		return
	}
	if _, ok := t.inStream[objNum]; ok {
		return
	}
	t.entries[objNum] = e
}

func (t *Table) addStreamEntry(objNum int, e streamEntry) {
	if _, ok := t.entries[objNum]; ok {
		return
	}
	if _, ok := t.inStream[objNum]; ok {
		return
	}
	t.inStream[objNum] = e
}

func (t *Table) mergeTrailer(d *raw.DictObj) {
	for k, v := range d.KV {
		if !t.trailer.Has(k) {
			t.trailer.Set(k, v)
		}
	}
}

type ResolverConfig struct {
	MaxXRefDepth        int
	MaxDecompressedSize int64
}

type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.MaxXRefDepth <= 0 {
		cfg.MaxXRefDepth = 32
	}
	return &Resolver{cfg: cfg}
}

// Resolve walks the xref chain starting at the last startxref marker and
// returns the consolidated table.
func (r *Resolver) Resolve(ctx context.Context, src io.ReaderAt) (*Table, error) {
	data := readAll(src)
	offset, err := findStartXRef(data)
	if err != nil {
		return nil, err
	}

	t := newTable()
	seen := make(map[int64]bool)
	for depth := 0; offset >= 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if depth >= r.cfg.MaxXRefDepth {
			return nil, errors.New("xref chain too deep")
		}
		if seen[offset] {
			break // cycle in the Prev chain
		}
		seen[offset] = true

		sectionTrailer, err := r.parseSection(data, offset, t)
		if err != nil {
			return nil, fmt.Errorf("xref section at %d: %w", offset, err)
		}
		t.mergeTrailer(sectionTrailer)

		// Hybrid file: the classic section points at a parallel xref
		// stream whose entries cover compressed objects.
		if stmOff, ok := sectionTrailer.GetInt("XRefStm"); ok && !seen[stmOff] {
			seen[stmOff] = true
			stmTrailer, err := r.parseStreamSection(data, stmOff, t)
			if err != nil {
				return nil, fmt.Errorf("hybrid xref stream at %d: %w", stmOff, err)
			}
			t.mergeTrailer(stmTrailer)
		}

		prev, ok := sectionTrailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = prev
	}

	if len(t.entries) == 0 && len(t.inStream) == 0 {
		return nil, errors.New("no xref entries found")
	}
	return t, nil
}

// parseSection dispatches on what sits at offset: the "xref" keyword of a
// classic table, or the "N G obj" header of an xref stream.
func (r *Resolver) parseSection(data []byte, offset int64, t *Table) (*raw.DictObj, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}
	rest := data[offset:]
	i := 0
	for i < len(rest) && isWS(rest[i]) {
		i++
	}
	if bytes.HasPrefix(rest[i:], []byte("xref")) {
		return r.parseClassicSection(data, offset, t)
	}
	return r.parseStreamSection(data, offset, t)
}

func (r *Resolver) parseClassicSection(data []byte, offset int64, t *Table) (*raw.DictObj, error) {
	s := scanner.New(bytes.NewReader(data), scanner.Config{})
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tok, err := s.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != scanner.TokenKeyword || tok.Str != "xref" {
		return nil, errors.New("xref keyword not found at offset")
	}

	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "trailer" {
			obj, err := parseObject(newTokenReader(s))
			if err != nil {
				return nil, fmt.Errorf("parse trailer: %w", err)
			}
			dict, ok := obj.(*raw.DictObj)
			if !ok {
				return nil, errors.New("trailer is not a dictionary")
			}
			return dict, nil
		}
		if tok.Type != scanner.TokenNumber || !tok.IsInt {
			return nil, fmt.Errorf("unexpected token in xref table at %d", tok.Pos)
		}
		start := int(tok.Int)
		countTok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if countTok.Type != scanner.TokenNumber || !countTok.IsInt {
			return nil, errors.New("invalid xref subsection header")
		}
		count := int(countTok.Int)
		for i := 0; i < count; i++ {
			offTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			genTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			kindTok, err := s.Next()
			if err != nil {
				return nil, err
			}
			if offTok.Type != scanner.TokenNumber || genTok.Type != scanner.TokenNumber ||
				kindTok.Type != scanner.TokenKeyword {
				return nil, errors.New("invalid xref entry")
			}
			if kindTok.Str != "n" {
				continue // free entry
			}
			t.addEntry(start+i, entry{offset: offTok.Int, gen: int(genTok.Int)})
		}
	}
}

func (r *Resolver) parseStreamSection(data []byte, offset int64, t *Table) (*raw.DictObj, error) {
	s := scanner.New(bytes.NewReader(data), scanner.Config{})
	if err := s.SeekTo(offset); err != nil {
		return nil, err
	}
	tr := newTokenReader(s)
	if err := expectObjHeader(tr); err != nil {
		return nil, err
	}
	obj, err := parseObject(tr)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(*raw.DictObj)
	if !ok {
		return nil, errors.New("xref stream object is not a dictionary")
	}
	if typ, _ := dict.GetName("Type"); typ != "XRef" {
		return nil, errors.New("object at xref offset is not an XRef stream")
	}
	length, ok := dict.GetInt("Length")
	if !ok {
		return nil, errors.New("xref stream missing direct Length")
	}
	s.SetNextStreamLength(length)
	streamTok, err := tr.next()
	if err != nil {
		return nil, err
	}
	if streamTok.Type != scanner.TokenStream {
		return nil, errors.New("xref stream carries no stream data")
	}

	payload := streamTok.Bytes
	names, params := filters.ExtractFilters(dict)
	if len(names) > 0 {
		pipeline := filters.NewDefault(filters.Limits{MaxDecompressedSize: r.cfg.MaxDecompressedSize})
		payload, err = pipeline.Decode(payload, names, params)
		if err != nil {
			return nil, fmt.Errorf("decode xref stream: %w", err)
		}
	}

	if err := r.parseStreamEntries(dict, payload, t); err != nil {
		return nil, err
	}
	return dict, nil
}

func (r *Resolver) parseStreamEntries(dict *raw.DictObj, payload []byte, t *Table) error {
	wObj, ok := dict.Get("W")
	if !ok {
		return errors.New("xref stream missing W")
	}
	wArr, ok := wObj.(*raw.ArrayObj)
	if !ok || wArr.Len() < 3 {
		return errors.New("xref stream W malformed")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		item, _ := wArr.Get(i)
		n, ok := item.(raw.NumberObj)
		if !ok || !n.IsInt {
			return errors.New("xref stream W malformed")
		}
		w[i] = int(n.I)
	}
	entryLen := w[0] + w[1] + w[2]
	if entryLen <= 0 {
		return errors.New("xref stream W degenerate")
	}

	size, _ := dict.GetInt("Size")
	var index []int
	if idxObj, ok := dict.Get("Index"); ok {
		arr, ok := idxObj.(*raw.ArrayObj)
		if !ok || arr.Len()%2 != 0 {
			return errors.New("xref stream Index malformed")
		}
		for _, item := range arr.Items {
			n, ok := item.(raw.NumberObj)
			if !ok || !n.IsInt {
				return errors.New("xref stream Index malformed")
			}
			index = append(index, int(n.I))
		}
	} else {
		index = []int{0, int(size)}
	}

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+entryLen > len(payload) {
				return errors.New("xref stream data truncated")
			}
			f1 := readField(payload[pos:pos+w[0]], 1) // type defaults to 1 when w0 == 0
			f2 := readField(payload[pos+w[0]:pos+w[0]+w[1]], 0)
			f3 := readField(payload[pos+w[0]+w[1]:pos+entryLen], 0)
			pos += entryLen

			objNum := start + j
			switch f1 {
			case 0: // free
			case 1:
				t.addEntry(objNum, entry{offset: f2, gen: int(f3)})
			case 2:
				t.addStreamEntry(objNum, streamEntry{streamNum: int(f2), index: int(f3)})
			}
		}
	}
	return nil
}

func readField(b []byte, def int64) int64 {
	if len(b) == 0 {
		return def
	}
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// findStartXRef locates the last startxref marker and parses the offset on
// the following line.
func findStartXRef(data []byte) (int64, error) {
	tail := data
	const window = 2048
	base := 0
	if len(tail) > window {
		base = len(tail) - window
		tail = tail[base:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		// some producers pad beyond the window; fall back to the full file
		idx = bytes.LastIndex(data, []byte("startxref"))
		if idx < 0 {
			return 0, errors.New("startxref not found")
		}
		base = 0
		tail = data
	}
	rest := tail[idx+len("startxref"):]
	i := 0
	for i < len(rest) && isWS(rest[i]) {
		i++
	}
	j := i
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j == i {
		return 0, errors.New("startxref offset missing")
	}
	off, err := strconv.ParseInt(string(rest[i:j]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse startxref: %w", err)
	}
	if off <= 0 || off >= int64(len(data)) {
		return 0, fmt.Errorf("xref offset out of range: %d", off)
	}
	return off, nil
}

func isWS(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func readAll(r io.ReaderAt) []byte {
	var buf bytes.Buffer
	const chunk = int64(32 * 1024)
	tmp := make([]byte, chunk)
	for off := int64(0); ; off += chunk {
		n, err := r.ReadAt(tmp, off)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil || int64(n) < chunk {
			break
		}
	}
	return buf.Bytes()
}
