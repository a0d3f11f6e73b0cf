// Package merge combines multiple documents into one. Each input is
// parsed, renumbered into a disjoint object range and adopted whole;
// a fresh page tree and catalog are built over the collected pages and
// the result is written atomically.
package merge

import (
	"context"
	"os"

	"pdfmerge/ir/raw"
	"pdfmerge/observability"
	"pdfmerge/parser"
	"pdfmerge/writer"
)

// Progress is invoked after each input is folded in. done counts from 1
// to total; path names the file just processed.
type Progress func(done, total int, path string)

type Options struct {
	// Version overrides the output header version; empty means 1.7.
	Version string
	// Progress, when set, receives one callback per completed input.
	Progress Progress
	// Logger receives pipeline diagnostics; nil means silence.
	Logger observability.Logger
	// Limits bounds parsing of each input; zero values use defaults.
	Limits parser.Limits
}

// Merge reads every input in order and writes the combined document to
// output. Any failure aborts the whole run and leaves no output file.
func Merge(ctx context.Context, inputs []string, output string, opts Options) error {
	if len(inputs) == 0 {
		return ErrNoFiles
	}
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}

	dest := raw.NewDocument()
	alloc := newAllocator()
	var pageList []raw.ObjectRef

	p := parser.NewDocumentParser(parser.Config{Limits: opts.Limits})
	for i, path := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := loadFile(ctx, p, path)
		if err != nil {
			return err
		}

		pages := collectPages(doc)
		if len(pages) == 0 {
			return &EmptyError{File: path}
		}

		offset := alloc.claim(doc.MaxObjNum)
		shiftDocument(doc, offset)
		for ref, obj := range doc.Objects {
			dest.Objects[ref] = obj
		}
		pageList = append(pageList, shiftRefs(pages, offset)...)

		log.Info("merged input",
			observability.String("path", path),
			observability.Int("pages", len(pages)),
			observability.Int("offset", offset),
			observability.Int("objects", len(doc.Objects)),
		)
		if opts.Progress != nil {
			opts.Progress(i+1, len(inputs), path)
		}
	}

	if err := buildPageTree(dest, pageList, alloc); err != nil {
		return err
	}
	dest.Version = opts.Version

	if err := writer.WriteFile(dest, output, writer.Config{Version: opts.Version}); err != nil {
		return &WriteError{Err: err}
	}
	log.Info("wrote output",
		observability.String("path", output),
		observability.Int("pages", len(pageList)),
		observability.Int("objects", len(dest.Objects)),
	)
	return nil
}

func loadFile(ctx context.Context, p *parser.DocumentParser, path string) (*raw.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	defer f.Close()

	doc, err := p.Parse(ctx, f)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	if doc.Encrypted {
		return nil, &ProtectedError{File: path}
	}
	return doc, nil
}
