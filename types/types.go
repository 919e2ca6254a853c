package types

import (
	"encoding/json"
	"slices"
)

// TagSet holds the tags read from one image, or marks that the image had
// no metadata block at all. A block with zero list items is present and
// empty, which is not the same as absent.
type TagSet struct {
	tags    []string
	present bool
}

// Present returns a TagSet holding tags in their original order
func Present(tags []string) TagSet {
	if tags == nil {
		tags = []string{}
	}
	return TagSet{tags: tags, present: true}
}

// Absent returns the TagSet for an image without a metadata block
func Absent() TagSet {
	return TagSet{}
}

// IsAbsent reports whether the image had no metadata block
func (t TagSet) IsAbsent() bool {
	return !t.present
}

// Tags returns the tags in order of appearance, duplicates included.
// An absent TagSet returns nil.
func (t TagSet) Tags() []string {
	return t.tags
}

// Len returns the number of tags
func (t TagSet) Len() int {
	return len(t.tags)
}

// Contains checks if tag is one of the set's tags. Absent sets contain nothing.
func (t TagSet) Contains(tag string) bool {
	return t.present && slices.Contains(t.tags, tag)
}

// MarshalJSON encodes an absent set as null and a present one as an array
func (t TagSet) MarshalJSON() ([]byte, error) {
	if !t.present {
		return []byte("null"), nil
	}
	return json.Marshal(t.tags)
}

// MarshalYAML mirrors MarshalJSON for yaml.v3
func (t TagSet) MarshalYAML() (interface{}, error) {
	if !t.present {
		return nil, nil
	}
	return t.tags, nil
}

// Association pairs an image path with the tags read from it
type Association struct {
	Path string `json:"path" yaml:"path"`
	Tags TagSet `json:"tags" yaml:"tags"`
}

// ImageRecord holds everything the catalog stores about one image
type ImageRecord struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Tags        TagSet `json:"tags"`
	Size        int64  `json:"size"`
	ModifiedAt  string `json:"modified_at"`
	ContentHash string `json:"content_hash"`
	IndexedAt   string `json:"indexed_at"`
}

// Association returns the filterable part of the record
func (r ImageRecord) Association() Association {
	return Association{Path: r.Path, Tags: r.Tags}
}
