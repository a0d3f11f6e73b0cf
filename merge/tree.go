package merge

import "pdfmerge/ir/raw"

const producerName = "pdfmerge"

// buildPageTree installs a single fresh /Pages node over the collected
// pages, reparents every page onto it and hangs a new catalog off the
// trailer. Existing intermediate tree nodes from the inputs stay in the
// object map but nothing references them anymore.
func buildPageTree(doc *raw.Document, pages []raw.ObjectRef, alloc *allocator) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	pagesRef := raw.ObjectRef{Num: alloc.next()}
	kids := raw.Array()
	for _, p := range pages {
		kids.Append(raw.Ref(p.Num, p.Gen))
	}
	pagesDict := raw.Dict()
	pagesDict.Set("Type", raw.Name("Pages"))
	pagesDict.Set("Kids", kids)
	pagesDict.Set("Count", raw.Int(int64(len(pages))))
	doc.Objects[pagesRef] = pagesDict

	for _, p := range pages {
		page, ok := doc.Objects[p].(*raw.DictObj)
		if !ok {
			continue
		}
		page.Delete("Parent")
		page.Set("Parent", raw.Ref(pagesRef.Num, pagesRef.Gen))
		page.Set("Type", raw.Name("Page"))
	}

	catalogRef := raw.ObjectRef{Num: alloc.next()}
	catalog := raw.Dict()
	catalog.Set("Type", raw.Name("Catalog"))
	catalog.Set("Pages", raw.Ref(pagesRef.Num, pagesRef.Gen))
	doc.Objects[catalogRef] = catalog

	infoRef := raw.ObjectRef{Num: alloc.next()}
	info := raw.Dict()
	info.Set("Producer", raw.Str([]byte(producerName)))
	doc.Objects[infoRef] = info

	doc.Trailer = raw.Dict()
	doc.Trailer.Set("Root", raw.Ref(catalogRef.Num, catalogRef.Gen))
	doc.Trailer.Set("Info", raw.Ref(infoRef.Num, infoRef.Gen))

	doc.MaxObjNum = infoRef.Num
	return nil
}
