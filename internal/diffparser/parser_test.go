package diffparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleDiff = `diff --git a/foo.go b/foo.go
index 1111111..2222222 100644
--- a/foo.go
+++ b/foo.go
@@ -1,3 +1,4 @@
 package foo

+// Added comment
 func Foo() {}
`

func TestParse_SingleHunk(t *testing.T) {
	hunks := Parse(simpleDiff)
	require.Len(t, hunks, 1)
	h := hunks[0]
	assert.Equal(t, "foo.go", h.FilePath)
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 3, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 4, h.NewCount)
	require.Len(t, h.Lines, 4)
	assert.Equal(t, "// Added comment", h.Lines[2].Content)
	assert.NotEmpty(t, h.ID)
	assert.NotEmpty(t, h.ContentHash)
}

func TestParse_Empty(t *testing.T) {
	hunks := Parse("")
	assert.NotNil(t, hunks)
	assert.Len(t, hunks, 0)
}

func TestParse_DeterministicID(t *testing.T) {
	a := Parse(simpleDiff)
	b := Parse(simpleDiff)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].ID, b[0].ID)
}

func TestParse_OmittedCount(t *testing.T) {
	diff := `diff --git a/one.go b/one.go
index 1111111..2222222 100644
--- a/one.go
+++ b/one.go
@@ -5 +5 @@
-old line
+new line
`
	hunks := Parse(diff)
	require.Len(t, hunks, 1)
	h := hunks[0]
	assert.Equal(t, 5, h.OldStart)
	assert.Equal(t, 1, h.OldCount)
	assert.Equal(t, 5, h.NewStart)
	assert.Equal(t, 1, h.NewCount)
}

func TestParse_ExplicitZeroCount(t *testing.T) {
	diff := `diff --git a/new.go b/new.go
new file mode 100644
index 0000000..1111111
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+line one
+line two
`
	hunks := Parse(diff)
	require.Len(t, hunks, 1)
	h := hunks[0]
	assert.Equal(t, 0, h.OldStart)
	assert.Equal(t, 0, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 2, h.NewCount)
}

func TestParse_MultiFile(t *testing.T) {
	diff := simpleDiff + `diff --git a/bar.go b/bar.go
index 3333333..4444444 100644
--- a/bar.go
+++ b/bar.go
@@ -10,2 +10,2 @@
-old bar
+new bar
 context bar
`
	hunks := Parse(diff)
	require.Len(t, hunks, 2)
	assert.Equal(t, "foo.go", hunks[0].FilePath)
	assert.Equal(t, "bar.go", hunks[1].FilePath)
}

func TestParse_PureDeletionSkipped(t *testing.T) {
	diff := `diff --git a/gone.go b/gone.go
deleted file mode 100644
index 1111111..0000000
--- a/gone.go
+++ /dev/null
@@ -1,2 +0,0 @@
-line one
-line two
`
	hunks := Parse(diff)
	assert.Len(t, hunks, 0)
}

func TestUntrackedPlaceholder(t *testing.T) {
	h := UntrackedPlaceholder("new/file.txt")
	assert.Equal(t, "new/file.txt", h.FilePath)
	assert.Equal(t, 0, h.OldStart)
	assert.Equal(t, 0, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 1, h.NewCount)
	require.Len(t, h.Lines, 1)
	assert.Equal(t, "(new file)", h.Lines[0].Content)
	assert.NotEmpty(t, h.ID)
}
