package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"pdfmerge/ir/raw"
)

// Write serializes the whole document: header, objects in ascending
// number order, a classic cross-reference table, and the trailer.
func Write(doc *raw.Document, out io.Writer, cfg Config) error {
	if doc.Trailer == nil || !doc.Trailer.Has("Root") {
		return errors.New("document has no catalog")
	}

	version := cfg.Version
	if version == "" {
		version = doc.Version
	}
	if version == "" {
		version = defaultVersion
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", version)
	buf.Write(headerComment)

	ordered := make([]raw.ObjectRef, 0, len(doc.Objects))
	for ref := range doc.Objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	type xrefEntry struct {
		offset int64
		gen    int
	}
	entries := make(map[int]xrefEntry, len(ordered))
	maxObjNum := 0
	for _, ref := range ordered {
		entries[ref.Num] = xrefEntry{offset: int64(buf.Len()), gen: ref.Gen}
		buf.Write(SerializeObject(ref, doc.Objects[ref]))
		if ref.Num > maxObjNum {
			maxObjNum = ref.Num
		}
	}

	xrefOffset := buf.Len()
	size := maxObjNum + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	// entry generations must match the object headers or readers reject
	// the file
	for i := 1; i <= maxObjNum; i++ {
		if e, ok := entries[i]; ok {
			fmt.Fprintf(&buf, "%010d %05d n \n", e.offset, e.gen)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := raw.Dict()
	trailer.Set("Size", raw.Int(int64(size)))
	if root, ok := doc.Trailer.Get("Root"); ok {
		trailer.Set("Root", root)
	}
	if info, ok := doc.Trailer.Get("Info"); ok {
		trailer.Set("Info", info)
	}
	buf.WriteString("trailer\n")
	buf.Write(serializeDict(trailer))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}

// WriteFile writes the document atomically: the bytes land in a
// temporary file in the destination directory, which is renamed over
// the target only after a successful sync. A failed write never leaves
// a partial file behind.
func WriteFile(doc *raw.Document, path string, cfg Config) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := Write(doc, tmp, cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
