package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Go(t *testing.T) {
	src := `package foo

func Bar(x int) int {
	return x + 1
}

type Widget struct {
	Name string
}

func (w *Widget) Rename(n string) {
	w.Name = n
}
`
	syms, hasGrammar := Extract("widget.go", src)
	require.True(t, hasGrammar)
	require.Len(t, syms, 3)
	assert.Equal(t, "Bar", syms[0].Name)
	assert.Equal(t, "Widget", syms[1].Name)
	assert.Equal(t, "(Widget).Rename", syms[2].Name)
}

func TestExtract_Python(t *testing.T) {
	src := `class Greeter:
    def hello(self):
        return "hi"

def standalone():
    pass
`
	syms, hasGrammar := Extract("g.py", src)
	require.True(t, hasGrammar)
	require.Len(t, syms, 2)
	assert.Equal(t, "Greeter", syms[0].Name)
	require.Len(t, syms[0].Children, 1)
	assert.Equal(t, "hello", syms[0].Children[0].Name)
	assert.Equal(t, "standalone", syms[1].Name)
}

func TestExtract_JSTS(t *testing.T) {
	src := `export class Widget {
  render() {
    return null;
  }
}

export function helper() {
  return 1;
}
`
	syms, hasGrammar := Extract("widget.tsx", src)
	require.True(t, hasGrammar)
	require.Len(t, syms, 2)
	assert.Equal(t, "Widget", syms[0].Name)
	require.Len(t, syms[0].Children, 1)
	assert.Equal(t, "render", syms[0].Children[0].Name)
	assert.Equal(t, "helper", syms[1].Name)
}

func TestExtract_Markdown(t *testing.T) {
	src := `# Title

Intro text.

## Section One

Body.

## Section Two

Body two.
`
	syms, hasGrammar := Extract("README.md", src)
	require.True(t, hasGrammar)
	require.Len(t, syms, 3)
	assert.Equal(t, "Title", syms[0].Name)
	assert.Equal(t, "Section One", syms[1].Name)
	assert.Equal(t, "Section Two", syms[2].Name)
}

func TestExtract_UnknownExtension(t *testing.T) {
	syms, hasGrammar := Extract("data.bin", "whatever")
	assert.False(t, hasGrammar)
	assert.Nil(t, syms)
}
