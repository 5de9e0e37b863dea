package diag

import (
	"bytes"
	"strings"
	"testing"

	"go.lsp.dev/uri"

	"github.com/gostc/stc/pkg/source"
)

func TestRender_IncludesSeverityCodeAndMessage(t *testing.T) {
	reg := NewRegistry(nil)
	r := NewRenderer(reg, nil)

	d := New("E048", "unresolved reference to 'foo'").At(source.None())

	var buf bytes.Buffer
	r.Render(&buf, d)

	out := buf.String()
	if !strings.Contains(out, "E048") || !strings.Contains(out, "unresolved reference to 'foo'") {
		t.Fatalf("rendered output missing code/message: %q", out)
	}
}

func TestRender_ShowsSourceLineWhenFileLoaded(t *testing.T) {
	u := uri.File("test.st")
	f := source.NewFile("test.st", u, []byte("PROGRAM p\n  x := y;\nEND_PROGRAM\n"))

	reg := NewRegistry(nil)
	r := NewRenderer(reg, nil, f)

	loc := source.NewRange(u, source.Range{StartLine: 2, StartColumn: 8})
	d := New("E048", "unresolved reference to 'y'").At(loc)

	var buf bytes.Buffer
	r.Render(&buf, d)

	out := buf.String()
	if !strings.Contains(out, "x := y;") {
		t.Fatalf("expected source line in output, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected a caret in output, got %q", out)
	}
}

func TestRender_FallsBackWithoutFile(t *testing.T) {
	reg := NewRegistry(nil)
	r := NewRenderer(reg, nil)

	d := New("E048", "unresolved reference").At(source.None())

	var buf bytes.Buffer
	r.Render(&buf, d)

	if strings.Contains(buf.String(), "^") {
		t.Fatalf("expected no caret when no file is loaded, got %q", buf.String())
	}
}
