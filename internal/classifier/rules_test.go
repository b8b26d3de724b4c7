package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reviewstation/engine/pkg/models"
)

func ln(t models.LineType, content string) models.DiffLine {
	return models.DiffLine{Type: t, Content: content}
}

func TestStaticClassify_LockfileWinsOverCommentShape(t *testing.T) {
	h := &models.Hunk{
		FilePath: "package-lock.json",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "// old"),
			ln(models.LineAdded, "// new"),
		},
	}
	r := StaticClassify(h, "json")
	assert := assert.New(t)
	assert.NotNil(r)
	assert.Equal([]string{"generated:lockfile"}, r.Label)
}

func TestStaticClassify_PureWhitespace(t *testing.T) {
	h := &models.Hunk{
		FilePath: "main.go",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "   "),
			ln(models.LineAdded, "\t"),
		},
	}
	r := StaticClassify(h, "go")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"formatting:whitespace"}, r.Label)
}

func TestStaticClassify_JSImportReorder(t *testing.T) {
	h := &models.Hunk{
		FilePath: "index.ts",
		OldCount: 2,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, `import { a } from "a";`),
			ln(models.LineRemoved, `import { b } from "b";`),
			ln(models.LineAdded, `import { b } from "b";`),
			ln(models.LineAdded, `import { a } from "a";`),
		},
	}
	r := StaticClassify(h, "ts")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"imports:reordered"}, r.Label)
}

func TestStaticClassify_RustUseAdded(t *testing.T) {
	h := &models.Hunk{
		FilePath: "lib.rs",
		OldCount: 0,
		Lines: []models.DiffLine{
			ln(models.LineAdded, "use std::collections::HashMap;"),
			ln(models.LineAdded, "use crate::models::Hunk;"),
		},
	}
	r := StaticClassify(h, "rs")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"imports:added"}, r.Label)
}

func TestStaticClassify_MovePairTakesPriority(t *testing.T) {
	id := "removed-hunk"
	h := &models.Hunk{
		FilePath:   "a.go",
		OldCount:   1,
		MovePairID: &id,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "func a() {}"),
		},
	}
	r := StaticClassify(h, "go")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"move:code"}, r.Label)
}

func TestStaticClassify_AddedEmptyFile(t *testing.T) {
	h := &models.Hunk{
		FilePath: "NEWFILE.txt",
		OldCount: 0,
		Lines: []models.DiffLine{
			ln(models.LineAdded, ""),
			ln(models.LineAdded, "   "),
		},
	}
	r := StaticClassify(h, "txt")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"file:added-empty"}, r.Label)
}

func TestStaticClassify_LineLengthReflow(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.go",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "foo(a, b, c, d, e)"),
			ln(models.LineAdded, "foo(a, b,"),
			ln(models.LineAdded, "    c, d, e)"),
		},
	}
	r := StaticClassify(h, "go")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"formatting:line-length"}, r.Label)
}

func TestStaticClassify_StyleNormalization(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.js",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "const x = 'a',"),
			ln(models.LineAdded, `const x = "a"`),
		},
	}
	r := StaticClassify(h, "js")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"formatting:style"}, r.Label)
}

func TestStaticClassify_CommentsModified(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.py",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "# old explanation"),
			ln(models.LineAdded, "# new explanation"),
		},
	}
	r := StaticClassify(h, "py")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"comments:modified"}, r.Label)
}

func TestStaticClassify_ProseInsideOpenBlockCommentCounts(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.go",
		OldCount: 0,
		Lines: []models.DiffLine{
			ln(models.LineAdded, "/* explains the function below"),
			ln(models.LineAdded, "still part of the same comment, no delimiter on this line"),
			ln(models.LineAdded, "*/"),
		},
	}
	r := StaticClassify(h, "go")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"comments:added"}, r.Label)
}

func TestStaticClassify_HTMLBlockComment(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.html",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "<!-- old note -->"),
			ln(models.LineAdded, "<!-- new note -->"),
		},
	}
	r := StaticClassify(h, "html")
	assert.NotNil(t, r)
	assert.Equal(t, []string{"comments:modified"}, r.Label)
}

func TestStaticClassify_NoRuleMatchesReturnsNil(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.go",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "return a + b"),
			ln(models.LineAdded, "return a * b"),
		},
	}
	assert.Nil(t, StaticClassify(h, "go"))
}

// Static classification is a pure function of the hunk: running it twice
// on the same input produces the same result.
func TestStaticClassify_Idempotent(t *testing.T) {
	h := &models.Hunk{
		FilePath: "a.py",
		OldCount: 1,
		Lines: []models.DiffLine{
			ln(models.LineRemoved, "x=1"),
			ln(models.LineAdded, "x = 1"),
		},
	}
	r1 := StaticClassify(h, "py")
	r2 := StaticClassify(h, "py")
	assert.Equal(t, r1, r2)
}
