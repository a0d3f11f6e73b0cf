package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := map[int]int64{}
	add := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	add(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	good := writePDF(t, dir, "good.pdf")

	empty := filepath.Join(dir, "empty.pdf")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	notpdf := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notpdf, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := validateInputs([]string{good}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if err := validateInputs([]string{filepath.Join(dir, "missing.pdf")}); err == nil {
		t.Fatal("missing file accepted")
	}
	if err := validateInputs([]string{dir}); err == nil {
		t.Fatal("directory accepted")
	}
	if err := validateInputs([]string{empty}); err == nil {
		t.Fatal("empty file accepted")
	}
	if err := validateInputs([]string{notpdf}); err == nil {
		t.Fatal("non-pdf extension accepted")
	}
}

func TestRootCommandMergesFiles(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf")
	b := writePDF(t, dir, "b.pdf")
	out := filepath.Join(dir, "out.pdf")

	rootCmd.SetArgs([]string{a, b, out, "--quiet"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRootCommandRejectsTooFewArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"only-one.pdf"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an argument count error")
	}
}
