package xref_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"pdfmerge/xref"
)

func buildSimplePDF() ([]byte, map[int]int64) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	offsets := make(map[int]int64)

	offsets[1] = int64(buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes(), offsets
}

func TestResolverParsesClassicTable(t *testing.T) {
	pdf, offsets := buildSimplePDF()

	table, err := xref.NewResolver(xref.ResolverConfig{}).Resolve(context.Background(), bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for obj, off := range offsets {
		gotOff, gen, ok := table.Lookup(obj)
		if !ok {
			t.Fatalf("missing object %d", obj)
		}
		if gotOff != off || gen != 0 {
			t.Fatalf("object %d: expected (%d,0), got (%d,%d)", obj, off, gotOff, gen)
		}
	}
	if root, ok := table.Trailer().Get("Root"); !ok {
		t.Fatal("trailer missing Root")
	} else if root.Kind() != "ref" {
		t.Fatalf("Root is %s, want ref", root.Kind())
	}
}

func buildXRefStreamEntries(size int, offsets map[int]int, objStreams map[int][2]int) []byte {
	const entrySize = 6 // W [1 4 1]
	total := make([]byte, entrySize*size)
	for obj, off := range offsets {
		i := obj * entrySize
		total[i] = 1
		total[i+1] = byte(off >> 24)
		total[i+2] = byte(off >> 16)
		total[i+3] = byte(off >> 8)
		total[i+4] = byte(off)
	}
	for obj, meta := range objStreams {
		i := obj * entrySize
		total[i] = 2
		total[i+1] = byte(meta[0] >> 24)
		total[i+2] = byte(meta[0] >> 16)
		total[i+3] = byte(meta[0] >> 8)
		total[i+4] = byte(meta[0])
		total[i+5] = byte(meta[1])
	}
	return total
}

func buildXRefStreamPDF() ([]byte, map[int]int) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	// object stream holding objects 4 and 5
	objStreamContent := "<< /Val 7 >> 5"
	header := fmt.Sprintf("4 0 5 %d ", len("<< /Val 7 >>")+1)
	decoded := []byte(header + objStreamContent)
	off3 := buf.Len()
	fmt.Fprintf(buf, "3 0 obj\n<< /Type /ObjStm /N 2 /First %d /Length %d >>\nstream\n", len(header), len(decoded))
	buf.Write(decoded)
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	offsets := map[int]int{1: off1, 2: off2, 3: off3, 6: xrefOffset}
	entries := buildXRefStreamEntries(7, offsets, map[int][2]int{
		4: {3, 0},
		5: {3, 1},
	})
	fmt.Fprintf(buf, "6 0 obj\n<< /Type /XRef /Size 7 /Root 1 0 R /W [1 4 1] /Index [0 7] /Length %d >>\nstream\n", len(entries))
	buf.Write(entries)
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes(), offsets
}

func TestResolverParsesXRefStream(t *testing.T) {
	pdf, offsets := buildXRefStreamPDF()

	table, err := xref.NewResolver(xref.ResolverConfig{}).Resolve(context.Background(), bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for obj, off := range offsets {
		gotOff, _, ok := table.Lookup(obj)
		if !ok {
			t.Fatalf("missing object %d", obj)
		}
		if gotOff != int64(off) {
			t.Fatalf("object %d: expected %d, got %d", obj, off, gotOff)
		}
	}
	for obj, want := range map[int][2]int{4: {3, 0}, 5: {3, 1}} {
		stm, idx, ok := table.ObjStream(obj)
		if !ok {
			t.Fatalf("object %d not marked compressed", obj)
		}
		if stm != want[0] || idx != want[1] {
			t.Fatalf("object %d: got (%d,%d), want (%d,%d)", obj, stm, idx, want[0], want[1])
		}
	}
	if size, ok := table.Trailer().GetInt("Size"); !ok || size != 7 {
		t.Fatalf("trailer Size: %d %v", size, ok)
	}
}

func buildIncrementalPDF() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	firstXRef := buf.Len()
	buf.WriteString("xref\n0 3\n0000000000 65535 f \n")
	fmt.Fprintf(buf, "%010d 00000 n \n%010d 00000 n \n", off1, off2)
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", firstXRef)

	// incremental update replacing object 2
	off2b := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 1 >>\nendobj\n")
	secondXRef := buf.Len()
	buf.WriteString("xref\n2 1\n")
	fmt.Fprintf(buf, "%010d 00000 n \n", off2b)
	fmt.Fprintf(buf, "trailer\n<< /Size 3 /Root 1 0 R /Prev %d >>\n", firstXRef)
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", secondXRef)
	return buf.Bytes()
}

func TestResolverFollowsPrevChain(t *testing.T) {
	pdf := buildIncrementalPDF()

	table, err := xref.NewResolver(xref.ResolverConfig{}).Resolve(context.Background(), bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// object 1 comes from the original section
	if _, _, ok := table.Lookup(1); !ok {
		t.Fatal("object 1 missing")
	}
	// object 2 must resolve to the newer offset
	off2, _, ok := table.Lookup(2)
	if !ok {
		t.Fatal("object 2 missing")
	}
	wantMarker := []byte("/Count 1")
	if !bytes.Contains(pdf[off2:off2+60], wantMarker) {
		t.Fatalf("object 2 resolves to the superseded revision (offset %d)", off2)
	}
}

func TestResolverRejectsMissingStartXRef(t *testing.T) {
	_, err := xref.NewResolver(xref.ResolverConfig{}).Resolve(context.Background(), bytes.NewReader([]byte("%PDF-1.7\nnothing else")))
	if err == nil {
		t.Fatal("expected error for missing startxref")
	}
}
