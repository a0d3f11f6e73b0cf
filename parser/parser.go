// Package parser loads a complete PDF file into a raw.Document: xref
// resolution, object loading (including compressed object streams), header
// version detection, and structural encryption detection.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pdfmerge/ir/raw"
	"pdfmerge/xref"
)

// Limits bound resource usage while parsing untrusted files.
type Limits struct {
	MaxStringLength     int64
	MaxStreamLength     int64
	MaxDecompressedSize int64
	MaxXRefDepth        int
}

func DefaultLimits() Limits {
	return Limits{
		MaxStringLength:     16 << 20,
		MaxStreamLength:     256 << 20,
		MaxDecompressedSize: 256 << 20,
		MaxXRefDepth:        32,
	}
}

type Config struct {
	Limits Limits
}

// DocumentParser builds a raw.Document using the xref table and the object
// loader.
type DocumentParser struct {
	cfg Config
}

func NewDocumentParser(cfg Config) *DocumentParser {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	return &DocumentParser{cfg: cfg}
}

func (p *DocumentParser) Parse(ctx context.Context, r io.ReaderAt) (*raw.Document, error) {
	resolver := xref.NewResolver(xref.ResolverConfig{
		MaxXRefDepth:        p.cfg.Limits.MaxXRefDepth,
		MaxDecompressedSize: p.cfg.Limits.MaxDecompressedSize,
	})
	table, err := resolver.Resolve(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("resolve xref: %w", err)
	}

	doc := raw.NewDocument()
	doc.Trailer = table.Trailer()
	doc.Version = detectHeaderVersion(r)
	doc.Encrypted = doc.Trailer.Has("Encrypt")

	loader := newObjectLoader(r, table, p.cfg.Limits)
	for _, objNum := range table.Objects() {
		if objNum == 0 {
			continue // head of the free list
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref, obj, err := loader.load(objNum)
		if err != nil {
			return nil, fmt.Errorf("load object %d: %w", objNum, err)
		}
		doc.Objects[ref] = obj
		if ref.Num > doc.MaxObjNum {
			doc.MaxObjNum = ref.Num
		}
	}

	if len(doc.Objects) == 0 {
		return nil, errors.New("document contains no objects")
	}
	return doc, nil
}

// detectHeaderVersion reads the %PDF-x.y comment off the first line.
func detectHeaderVersion(r io.ReaderAt) string {
	buf := make([]byte, 64)
	n, err := r.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	line := string(buf[:n])
	for _, sep := range []string{"\r\n", "\n", "\r"} {
		if idx := strings.Index(line, sep); idx >= 0 {
			line = line[:idx]
			break
		}
	}
	if strings.HasPrefix(line, "%PDF-") && len(line) >= 8 {
		return strings.TrimSpace(line[5:])
	}
	return ""
}
