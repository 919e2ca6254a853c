// Package tagindex filters image associations by tag membership.
//
// Each distinct tag maps to a Roaring Bitmap of the positions of the
// associations carrying it. Match-any is the union of the wanted tags'
// bitmaps, match-all their intersection, and results come back in the
// order the associations were given.
package tagindex

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"tagfinder/types"
)

// Mode selects how wanted tags combine
type Mode string

const (
	// ModeAny matches associations carrying at least one wanted tag.
	ModeAny Mode = "any"
	// ModeAll matches associations carrying every wanted tag.
	ModeAll Mode = "all"
)

// ParseMode parses a mode name, ignoring case. There is no default: any other
// value is a *types.InvalidArgumentError.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeAny:
		return ModeAny, nil
	case ModeAll:
		return ModeAll, nil
	default:
		return "", &types.InvalidArgumentError{Name: "mode", Value: s}
	}
}

// TagIndex is an inverted index from tag to association positions
type TagIndex struct {
	paths    []string
	postings map[string]*roaring.Bitmap
}

// New builds an index over assocs. Absent tag sets contribute no tags.
func New(assocs []types.Association) *TagIndex {
	idx := &TagIndex{
		paths:    make([]string, len(assocs)),
		postings: make(map[string]*roaring.Bitmap),
	}
	for i, assoc := range assocs {
		idx.paths[i] = assoc.Path
		for _, tag := range assoc.Tags.Tags() {
			bm, ok := idx.postings[tag]
			if !ok {
				bm = roaring.New()
				idx.postings[tag] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return idx
}

// Len returns the number of indexed associations
func (idx *TagIndex) Len() int {
	return len(idx.paths)
}

// Match returns the paths of the associations satisfying wanted under mode,
// in index order.
//
// With no wanted tags, ModeAny matches nothing and ModeAll matches every
// association.
func (idx *TagIndex) Match(wanted []string, mode Mode) ([]string, error) {
	var result *roaring.Bitmap

	switch mode {
	case ModeAny:
		result = roaring.New()
		for _, tag := range wanted {
			if bm, ok := idx.postings[tag]; ok {
				result.Or(bm)
			}
		}
	case ModeAll:
		result = roaring.New()
		result.AddRange(0, uint64(len(idx.paths)))
		for _, tag := range wanted {
			bm, ok := idx.postings[tag]
			if !ok {
				return []string{}, nil
			}
			result.And(bm)
		}
	default:
		return nil, &types.InvalidArgumentError{Name: "mode", Value: string(mode)}
	}

	paths := make([]string, 0, result.GetCardinality())
	it := result.Iterator()
	for it.HasNext() {
		paths = append(paths, idx.paths[it.Next()])
	}
	return paths, nil
}

// TagCount is one entry of the tag vocabulary
type TagCount struct {
	Tag    string `json:"tag" yaml:"tag"`
	Images int    `json:"images" yaml:"images"`
}

// Tags returns every distinct tag with the number of associations carrying
// it, most common first and ties broken by name
func (idx *TagIndex) Tags() []TagCount {
	counts := make([]TagCount, 0, len(idx.postings))
	for tag, bm := range idx.postings {
		counts = append(counts, TagCount{Tag: tag, Images: int(bm.GetCardinality())})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Images != counts[j].Images {
			return counts[i].Images > counts[j].Images
		}
		return counts[i].Tag < counts[j].Tag
	})
	return counts
}

// FilterByTags returns the paths of assocs whose tags satisfy wanted under
// the named mode ("any" or "all", case-insensitive)
func FilterByTags(assocs []types.Association, wanted []string, mode string) ([]string, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return New(assocs).Match(wanted, m)
}
