package kb

import "sort"

// GroupBatches buckets parsed files into one batch per (date, publication)
// key and orders each batch's pages. Unknown files group per (date, bib)
// through their display name, so two unmapped publications from the same
// day never merge. The returned slice is in sorted key order, which makes
// the batch processing order deterministic for a given input set.
func GroupBatches(files []ParsedFile) []Batch {
	byKey := make(map[[2]string][]ParsedFile)
	for _, f := range files {
		key := [2]string{f.Date, f.DisplayName()}
		byKey[key] = append(byKey[key], f)
	}

	keys := make([][2]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	batches := make([]Batch, 0, len(keys))
	for _, k := range keys {
		pages := byKey[k]
		SortPages(pages)
		batches = append(batches, Batch{Date: k[0], Publication: k[1], Pages: pages})
	}
	return batches
}

// SortPages orders pages by ascending sequence number. Pages sharing a
// sequence number are both kept; the tie-break is the original filename in
// bytewise order, so the result is deterministic for the same input set.
func SortPages(pages []ParsedFile) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Sequence != pages[j].Sequence {
			return pages[i].Sequence < pages[j].Sequence
		}
		return pages[i].Name < pages[j].Name
	})
}
