package bytescan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagfinder/types"
)

func strs(items [][]byte) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	return out
}

func TestFindBlock_NotPresent(t *testing.T) {
	m := XMPMarkers()

	block, found, err := FindBlock([]byte("\xff\xd8\xff\xe0 plain jpeg bytes"), m.BlockOpen, m.BlockClose)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, block)
}

func TestFindBlock_Single(t *testing.T) {
	m := XMPMarkers()
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:li>a</rdf:li></x:xmpmeta>`
	buf := []byte("\xff\xd8head" + packet + "tail\xff\xd9")

	block, found, err := FindBlock(buf, m.BlockOpen, m.BlockClose)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, packet, string(block))
}

func TestFindBlock_StopsAtFirstClose(t *testing.T) {
	buf := []byte("[[one]] junk ]] [[two]]")

	_, found, err := FindBlock(buf, []byte("[["), []byte("]]"))
	require.Error(t, err)
	assert.False(t, found)

	var multi *types.MultipleBlocksError
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 2, multi.Count)
	assert.ErrorIs(t, err, types.ErrMultipleBlocks)
}

func TestFindBlock_Multiple(t *testing.T) {
	m := XMPMarkers()
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/">x</x:xmpmeta>`
	buf := []byte(packet + "\x00\x01" + packet + packet)

	_, _, err := FindBlock(buf, m.BlockOpen, m.BlockClose)
	var multi *types.MultipleBlocksError
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 3, multi.Count)
}

func TestFindBlock_UnterminatedOpen(t *testing.T) {
	m := XMPMarkers()
	buf := []byte(`junk<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:li>a</rdf:li>`)

	_, found, err := FindBlock(buf, m.BlockOpen, m.BlockClose)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindBlock_CloseBeforeOpenIgnored(t *testing.T) {
	buf := []byte("]] [[inner]]")

	block, found, err := FindBlock(buf, []byte("[["), []byte("]]"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[[inner]]", string(block))
}

func TestFindAll(t *testing.T) {
	m := XMPMarkers()

	tests := []struct {
		name string
		buf  string
		want []string
	}{
		{"none", "<rdf:Bag></rdf:Bag>", []string{}},
		{"ordered", "<rdf:li>sunset</rdf:li>junk<rdf:li>beach</rdf:li>", []string{"sunset", "beach"}},
		{"duplicates kept", "<rdf:li>a</rdf:li><rdf:li>b</rdf:li><rdf:li>a</rdf:li>", []string{"a", "b", "a"}},
		{"shortest match", "<rdf:li>a</rdf:li>middle</rdf:li>", []string{"a"}},
		{"empty interior", "<rdf:li></rdf:li>", []string{""}},
		{"multiline interior", "<rdf:li>two\nlines</rdf:li>", []string{"two\nlines"}},
		{"unterminated tail", "<rdf:li>a</rdf:li><rdf:li>b", []string{"a"}},
		{"nested open", "<rdf:li>x<rdf:li>y</rdf:li>", []string{"x<rdf:li>y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll([]byte(tt.buf), m.ItemOpen, m.ItemClose)
			assert.Equal(t, tt.want, strs(got))
		})
	}
}

func TestFindAll_EmptyDelimiters(t *testing.T) {
	assert.Empty(t, FindAll([]byte("abc"), nil, []byte("c")))
	assert.Empty(t, FindAll([]byte("abc"), []byte("a"), nil))
}
