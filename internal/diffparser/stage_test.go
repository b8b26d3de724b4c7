package diffparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	diff := `diff --git a/foo.go b/foo.go
index 1111111..2222222 100644
--- a/foo.go
+++ b/foo.go
@@ -1,2 +1,3 @@
 package foo
+// one
@@ -10,2 +11,3 @@
 func Foo() {}
+// two`

	header, sections := SplitSections("foo.go", diff)

	assert.True(t, strings.HasPrefix(header, "diff --git a/foo.go b/foo.go"))
	assert.Contains(t, header, "+++ b/foo.go")
	require.Len(t, sections, 2)
	assert.Contains(t, sections[0].Raw, "@@ -1,2 +1,3 @@")
	assert.Contains(t, sections[1].Raw, "@@ -10,2 +11,3 @@")
	assert.NotEqual(t, sections[0].ID, sections[1].ID)

	full := Parse(diff)
	require.Len(t, full, 2)
	assert.Equal(t, full[0].ID, sections[0].ID)
	assert.Equal(t, full[1].ID, sections[1].ID)
}
