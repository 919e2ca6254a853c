// Package bytescan locates regions between fixed delimiters inside raw byte
// buffers. It works on literal byte sequences only: no XML parsing and no
// regular expressions.
package bytescan

import (
	"bytes"

	"tagfinder/types"
)

// Markers is the pair of delimiter sets used to pull tags out of an image:
// the outer block delimiters and the list item delimiters inside it.
type Markers struct {
	BlockOpen  []byte
	BlockClose []byte
	ItemOpen   []byte
	ItemClose  []byte
}

// XMPMarkers returns the delimiters of an Adobe XMP packet and its rdf:li entries
func XMPMarkers() Markers {
	return Markers{
		BlockOpen:  []byte(`<x:xmpmeta xmlns:x="adobe:ns:meta/">`),
		BlockClose: []byte(`</x:xmpmeta>`),
		ItemOpen:   []byte(`<rdf:li>`),
		ItemClose:  []byte(`</rdf:li>`),
	}
}

// FindBlock returns the single region of buf running from open to the nearest
// close after it, delimiters included. found is false when buf has no such
// region. More than one region is a *types.MultipleBlocksError.
func FindBlock(buf, open, close []byte) (block []byte, found bool, err error) {
	count := 0
	offset := 0
	for {
		start, end, ok := nextRegion(buf, offset, open, close)
		if !ok {
			break
		}
		count++
		if count == 1 {
			block = buf[start:end]
		}
		offset = end
	}

	switch count {
	case 0:
		return nil, false, nil
	case 1:
		return block, true, nil
	default:
		return nil, false, &types.MultipleBlocksError{Count: count}
	}
}

// FindAll returns the interior of every non-overlapping open...close region in
// buf, in order. Each interior stops at the nearest close, so repeated items
// come back one by one. Interiors alias buf.
func FindAll(buf, open, close []byte) [][]byte {
	var items [][]byte
	offset := 0
	for {
		start, end, ok := nextRegion(buf, offset, open, close)
		if !ok {
			return items
		}
		items = append(items, buf[start+len(open):end-len(close)])
		offset = end
	}
}

// nextRegion finds the first open at or after offset and the nearest close
// following it. start and end bound the region including both delimiters.
func nextRegion(buf []byte, offset int, open, close []byte) (start, end int, ok bool) {
	if len(open) == 0 || len(close) == 0 || offset >= len(buf) {
		return 0, 0, false
	}

	i := bytes.Index(buf[offset:], open)
	if i < 0 {
		return 0, 0, false
	}
	start = offset + i
	interior := start + len(open)

	j := bytes.Index(buf[interior:], close)
	if j < 0 {
		// an unterminated open cannot be followed by a terminated one
		return 0, 0, false
	}
	end = interior + j + len(close)
	return start, end, true
}
