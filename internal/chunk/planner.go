// Package chunk decides how a fetched artifact maps onto the delivery
// channel's per-file size limit and performs the byte-range split.
package chunk

import (
	"fmt"
	"strings"
)

// Part describes one planned slice of an artifact.
type Part struct {
	Number     int
	TotalParts int
	Offset     int64
	Size       int64
	Title      string
	Performer  string
}

// Plan splits an artifact of the given byte size into sequential parts
// of at most limit bytes. An artifact within the limit yields a single
// part; otherwise the final part carries the remainder. The artifact is
// treated as an opaque byte sequence, nothing is re-encoded.
func Plan(size, limit int64, title, performer string) []Part {
	if limit <= 0 || size <= limit {
		return []Part{{
			Number:     1,
			TotalParts: 1,
			Offset:     0,
			Size:       size,
			Title:      title,
			Performer:  performer,
		}}
	}

	total := int((size + limit - 1) / limit)
	parts := make([]Part, 0, total)
	for i := 1; i <= total; i++ {
		offset := int64(i-1) * limit
		partSize := limit
		if i == total {
			partSize = size - offset
		}
		parts = append(parts, Part{
			Number:     i,
			TotalParts: total,
			Offset:     offset,
			Size:       partSize,
			Title:      PartTitle(title, i),
			Performer:  performer,
		})
	}
	return parts
}

// PartTitle disambiguates a part's position in its title without
// duplicating a marker that is already there.
func PartTitle(title string, number int) string {
	marker := fmt.Sprintf("(part %d)", number)
	if strings.Contains(title, marker) {
		return title
	}
	return title + " " + marker
}
