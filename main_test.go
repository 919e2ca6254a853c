package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tagfinder/types"
)

func jpeg(tags ...string) []byte {
	body := "\xff\xd8\xff\xe1" + `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:Bag>`
	for _, tag := range tags {
		body += "<rdf:li>" + tag + "</rdf:li>"
	}
	return []byte(body + `</rdf:Bag></x:xmpmeta>` + "\xff\xd9")
}

// photoDir builds the a/b/c/d layout used throughout the CLI tests
func photoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"a.jpg":           jpeg("sunset", "beach"),
		"b.jpeg":          jpeg("beach"),
		"c.png":           jpeg("sunset"),
		"d.jpg":           []byte("\xff\xd8\xff\xd9"),
		"trips/e.JPG":     jpeg("sunset", "mountain"),
		"trips/old/f.jpg": jpeg("beach", "sunset"),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestRun_List(t *testing.T) {
	dir := photoDir(t)

	out, _, err := runCLI(t, "list", "--folder", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpeg"),
		filepath.Join(dir, "d.jpg"),
	}, lines(out))

	out, _, err = runCLI(t, "list", "--folder", dir, "-r")
	require.NoError(t, err)
	assert.Len(t, lines(out), 5)
}

func TestRun_ListShowTags(t *testing.T) {
	dir := photoDir(t)

	out, _, err := runCLI(t, "list", "--folder", dir, "--show-tags")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg") + "\tsunset, beach",
		filepath.Join(dir, "b.jpeg") + "\tbeach",
		filepath.Join(dir, "d.jpg") + "\t(no metadata)",
	}, lines(out))

	out, _, err = runCLI(t, "list", "--folder", dir, "--show-tags", "--format", "json")
	require.NoError(t, err)
	var decoded []struct {
		Path string   `json:"path"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, []string{"sunset", "beach"}, decoded[0].Tags)
	assert.Nil(t, decoded[2].Tags)
}

func TestRun_Search(t *testing.T) {
	dir := photoDir(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"any sunset", []string{"--tags", "sunset"}, []string{"a.jpg"}},
		{"all both", []string{"--tags", "sunset,beach", "--mode", "all"}, []string{"a.jpg"}},
		{"any both", []string{"--tags", "sunset", "--tags", "beach", "--mode", "ANY"}, []string{"a.jpg", "b.jpeg"}},
		{"recursive", []string{"--tags", "sunset", "-r"}, []string{"a.jpg", "trips/e.JPG", "trips/old/f.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"search", "--folder", dir}, tt.args...)
			out, _, err := runCLI(t, args...)
			require.NoError(t, err)

			var want []string
			for _, name := range tt.want {
				want = append(want, filepath.Join(dir, name))
			}
			assert.Equal(t, want, lines(out))
		})
	}
}

func TestRun_SearchInvalidMode(t *testing.T) {
	dir := photoDir(t)

	_, _, err := runCLI(t, "search", "--folder", dir, "--tags", "sunset", "--mode", "some")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestRun_SearchKeepGoing(t *testing.T) {
	dir := photoDir(t)
	doubled := append(jpeg("sunset"), jpeg("sunset")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.jpg"), doubled, 0o644))

	_, _, err := runCLI(t, "search", "--folder", dir, "--tags", "sunset")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMultipleBlocks)

	out, errOut, err := runCLI(t, "search", "--folder", dir, "--tags", "sunset", "--keep-going")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.jpg")}, lines(out))
	assert.Contains(t, errOut, "bad.jpg")
}

func TestRun_IndexAndQuery(t *testing.T) {
	dir := photoDir(t)
	dbPath := filepath.Join(t.TempDir(), "tags.db")

	out, _, err := runCLI(t, "index", "--folder", dir, "--database", dbPath, "--recursive")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexing complete.")
	assert.Contains(t, out, "- Total images: 5")

	out, _, err = runCLI(t, "query", "--database", dbPath, "--tags", "sunset,beach", "--mode", "all")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "trips/old/f.jpg"),
	}, lines(out))

	out, _, err = runCLI(t, "query", "--db", dbPath, "--vocabulary", "--format", "yaml")
	require.NoError(t, err)
	var vocabulary []struct {
		Tag    string `yaml:"tag"`
		Images int    `yaml:"images"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &vocabulary))
	require.Len(t, vocabulary, 3)
	assert.Equal(t, "beach", vocabulary[0].Tag)
	assert.Equal(t, 3, vocabulary[0].Images)

	out, _, err = runCLI(t, "index", "--folder", dir, "--database", dbPath, "--recursive", "--format", "json")
	require.NoError(t, err)
	var report struct {
		Summary struct {
			Found   int `json:"found"`
			Skipped int `json:"skipped"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Summary.Found)
	assert.Equal(t, 5, report.Summary.Skipped)
}

func TestRun_QueryMissingCatalog(t *testing.T) {
	_, _, err := runCLI(t, "query", "--database", filepath.Join(t.TempDir(), "none.db"), "--tags", "x")
	assert.Error(t, err)
}

func TestRun_Config(t *testing.T) {
	dir := photoDir(t)
	cfgPath := filepath.Join(t.TempDir(), "tagfinder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("recursive: true\nmode: all\n"), 0o644))

	out, _, err := runCLI(t, "search", "--config", cfgPath, "--folder", dir, "--tags", "beach,sunset")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "trips/old/f.jpg"),
	}, lines(out))

	// flags win over the file
	out, _, err = runCLI(t, "search", "--config", cfgPath, "--folder", dir, "--tags", "beach,sunset", "--mode", "any", "--recursive=false")
	require.NoError(t, err)
	assert.Len(t, lines(out), 2)
}

func TestRun_UsageErrors(t *testing.T) {
	var usage *usageError

	_, _, err := runCLI(t)
	assert.ErrorAs(t, err, &usage)

	_, _, err = runCLI(t, "frobnicate")
	assert.ErrorAs(t, err, &usage)

	_, _, err = runCLI(t, "list")
	assert.ErrorAs(t, err, &usage)

	_, _, err = runCLI(t, "list", "--no-such-flag")
	assert.ErrorAs(t, err, &usage)

	_, _, err = runCLI(t, "list", "--folder", t.TempDir(), "stray")
	assert.ErrorAs(t, err, &usage)
}
