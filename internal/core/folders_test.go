package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderBuilder_Place(t *testing.T) {
	b := NewFolderBuilder("ref", false)

	assert.Equal(t, "ref/Folder 1/Folder 2", b.Place("Folder 1/Folder 2"))
	assert.Equal(t, []ExternalFolder{
		{Name: "ref", FolderParentPath: ""},
		{Name: "Folder 1", FolderParentPath: "ref"},
		{Name: "Folder 2", FolderParentPath: "ref/Folder 1"},
	}, b.Folders())
	assert.Empty(t, b.Errors())
}

func TestFolderBuilder_RootOnly(t *testing.T) {
	b := NewFolderBuilder("ref", false)

	assert.Equal(t, "ref", b.Place(""))
	assert.Equal(t, "ref", b.Place(" / "))
	assert.Equal(t, []ExternalFolder{{Name: "ref"}}, b.Folders())
}

func TestFolderBuilder_DedupByFullPath(t *testing.T) {
	b := NewFolderBuilder("ref", false)

	paths := []string{"a/x", "b/x", "a/x", "a", "a/x/y", "b/x"}
	for range 2 {
		for _, p := range paths {
			b.Place(p)
		}
	}

	folders := b.Folders()
	seen := make(map[string]struct{})
	for _, f := range folders {
		_, dup := seen[f.Path()]
		assert.False(t, dup, "duplicate folder %s", f.Path())
		seen[f.Path()] = struct{}{}
	}

	got := make([]string, len(folders))
	for i, f := range folders {
		got[i] = f.Path()
	}
	assert.Equal(t, []string{"ref", "ref/a", "ref/a/x", "ref/b", "ref/b/x", "ref/a/x/y"}, got)
}

func TestFolderBuilder_InvalidFolder(t *testing.T) {
	b := NewFolderBuilder("ref", false)
	long := strings.Repeat("n", MaxFolderNameLength+1)

	assert.Equal(t, "ref", b.Place("ok/"+long+"/deeper"))
	assert.Equal(t, "ref", b.Place("ok/"+long))

	errs := b.Errors()
	require.Len(t, errs, 1, "a broken folder is reported once")
	assert.Equal(t, "ref/ok/"+long, errs[0].Path)

	var verr ValidationError
	assert.ErrorAs(t, errs[0], &verr)

	// Resources sent to the root leave no ancestors behind.
	assert.Equal(t, []ExternalFolder{{Name: "ref"}}, b.Folders())
	assert.Equal(t, "ref/ok", b.Place("ok"))
	assert.Equal(t, []ExternalFolder{{Name: "ref"}, {Name: "ok", FolderParentPath: "ref"}}, b.Folders())
}

func TestFolderBuilder_Flatten(t *testing.T) {
	b := NewFolderBuilder("ref", true)

	assert.Equal(t, "ref", b.Place("a/b/c"))
	assert.Equal(t, []ExternalFolder{{Name: "ref"}}, b.Folders())
}

func TestFolderBuilder_InvalidRoot(t *testing.T) {
	tests := []struct {
		name      string
		reference string
	}{
		{name: "empty", reference: ""},
		{name: "separator", reference: "team/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFolderBuilder(tt.reference, false)

			assert.Equal(t, "", b.Place("a/b"))
			assert.Equal(t, "", b.Place(""))
			assert.Equal(t, "", b.Root())
			assert.Empty(t, b.Folders())

			errs := b.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.reference, errs[0].Path)
		})
	}
}

func TestFolderBuilder_ResolveDefersEmission(t *testing.T) {
	b := NewFolderBuilder("ref", false)

	dropped := b.Resolve("Orphan/Deep")
	assert.Equal(t, "ref/Orphan/Deep", dropped.Path)
	assert.Equal(t, []ExternalFolder{{Name: "ref"}}, b.Folders(), "nothing emitted before commit")

	kept := b.Resolve("Orphan/Kept")
	b.Commit(kept)
	b.Commit(kept)

	assert.Equal(t, []ExternalFolder{
		{Name: "ref"},
		{Name: "Orphan", FolderParentPath: "ref"},
		{Name: "Kept", FolderParentPath: "ref/Orphan"},
	}, b.Folders())
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitPath(" a / b c /"))
	assert.Empty(t, SplitPath(""))
	assert.Equal(t, "a/b", JoinPath("a", "b"))
	assert.Equal(t, "b", JoinPath("", "b"))
}
