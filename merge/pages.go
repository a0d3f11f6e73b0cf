package merge

import "pdfmerge/ir/raw"

// collectPages walks the page tree depth first, returning leaf page
// references in document order. Nodes without /Kids count as leaves
// even when /Type is missing; malformed kid entries are skipped. A
// visited set guards against reference cycles.
func collectPages(doc *raw.Document) []raw.ObjectRef {
	catalog, ok := doc.Catalog()
	if !ok {
		return nil
	}
	rootRef, ok := catalog.Get("Pages")
	if !ok {
		return nil
	}
	var pages []raw.ObjectRef
	visited := make(map[raw.ObjectRef]bool)
	walkPageNode(doc, rootRef, visited, &pages)
	return pages
}

func walkPageNode(doc *raw.Document, obj raw.Object, visited map[raw.ObjectRef]bool, pages *[]raw.ObjectRef) {
	ref, ok := obj.(raw.RefObj)
	if !ok {
		return
	}
	if visited[ref.R] {
		return
	}
	visited[ref.R] = true

	node, ok := doc.Resolve(ref).(*raw.DictObj)
	if !ok {
		return
	}
	typ, _ := node.GetName("Type")
	kids, hasKids := node.Get("Kids")
	if typ == "Page" || !hasKids {
		*pages = append(*pages, ref.R)
		return
	}
	kidsArr, ok := doc.Resolve(kids).(*raw.ArrayObj)
	if !ok {
		return
	}
	for _, kid := range kidsArr.Items {
		walkPageNode(doc, kid, visited, pages)
	}
}
