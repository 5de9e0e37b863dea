package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.lsp.dev/uri"
	"golang.org/x/term"

	"github.com/gostc/stc/pkg/source"
)

// defaultWidth is the column budget used when stdout isn't a terminal (a
// pipe, a redirected file, or a CI log) and golang.org/x/term.GetSize has
// nothing to report.
const defaultWidth = 80

// Renderer formats diagnostics for a terminal: the catalog severity label,
// code, and message, followed — when the diagnostic's location falls
// within a loaded file — by the offending source line and a caret under
// the offending column. Grounded on the teacher's
// pkg/util/source.SyntaxError.FirstEnclosingLine/Error() string
// formatting, generalized from a single SyntaxError to the full
// Diagnostic type and widened with a terminal-width-aware line clip.
type Renderer struct {
	reg   *Registry
	files map[uri.URI]*source.File
	width int
}

// NewRenderer builds a renderer keyed by registry (for severity labels)
// and loaded source files (for source-line context). width is probed from
// fd via term.GetSize; a non-terminal fd (or GetSize error) falls back to
// defaultWidth.
func NewRenderer(reg *Registry, fd *os.File, files ...*source.File) *Renderer {
	byURI := make(map[uri.URI]*source.File, len(files))
	for _, f := range files {
		byURI[f.URI] = f
	}

	width := defaultWidth
	if fd != nil {
		if w, _, err := term.GetSize(int(fd.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &Renderer{reg: reg, files: byURI, width: width}
}

// Render writes one diagnostic as a severity-labeled line, optionally
// followed by its source-line context and caret.
func (r *Renderer) Render(w io.Writer, d *Diagnostic) {
	sev := r.reg.Assess(d.Code)
	fmt.Fprintf(w, "%s: %s: [%s] %s\n", sev, d.Location, d.Code, d.Message)

	if ctx, ok := r.context(d.Location); ok {
		fmt.Fprintln(w, ctx)
	}
}

// RenderAll writes every diagnostic in order, one after another.
func (r *Renderer) RenderAll(w io.Writer, diags []*Diagnostic) {
	for _, d := range diags {
		r.Render(w, d)
	}
}

// context renders the clipped source line and caret for loc, if its file
// is loaded and it carries a textual range.
func (r *Renderer) context(loc source.Location) (string, bool) {
	fileOpt := loc.File()
	if fileOpt.IsEmpty() {
		return "", false
	}

	f, ok := r.files[fileOpt.Unwrap()]
	if !ok {
		return "", false
	}

	rng := loc.ToRange()
	if rng.IsEmpty() {
		return "", false
	}

	line := lineText(f, rng.Unwrap().StartLine)
	column := rng.Unwrap().StartColumn

	clipped, column := r.clip(line, column)

	caret := strings.Repeat(" ", max(column-1, 0)) + "^"

	return clipped + "\n" + caret, true
}

// clip truncates line to the renderer's width, keeping the caret column
// visible by sliding a window when the column would otherwise fall past
// the right edge.
func (r *Renderer) clip(line string, column int) (string, int) {
	runes := []rune(line)
	if len(runes) <= r.width {
		return line, column
	}

	start := 0
	if column > r.width {
		start = column - r.width/2
	}

	end := start + r.width
	if end > len(runes) {
		end = len(runes)
		start = max(end-r.width, 0)
	}

	return string(runes[start:end]), column - start
}

func lineText(f *source.File, line int) string {
	runes := f.Contents

	start := 0
	current := 1

	for i, c := range runes {
		if current == line {
			start = i

			break
		}

		if c == '\n' {
			current++
		}
	}

	end := start
	for end < len(runes) && runes[end] != '\n' {
		end++
	}

	return string(runes[start:end])
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
