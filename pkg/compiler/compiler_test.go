package compiler

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"go.lsp.dev/uri"

	"github.com/gostc/stc/pkg/source"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func file(name, text string) *source.File {
	return source.NewFile(name, uri.File(name), []byte(text))
}

func codes(result *Result) []string {
	var out []string
	for _, d := range result.Diags.Diagnostics() {
		out = append(out, d.Code)
	}

	return out
}

func TestCompile_SingleFileProgram(t *testing.T) {
	src := `
PROGRAM Main
	VAR
		counter : INT := 0;
	END_VAR
	counter := counter + 1;
END_PROGRAM
`

	result := Compile(testLogger(), []*source.File{file("main.st", src)})

	if len(result.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(result.Units))
	}

	if result.Index.FindPOU("Main").IsEmpty() {
		t.Fatalf("expected Main to be registered in the merged index")
	}
}

func TestCompile_CrossFileReferenceResolves(t *testing.T) {
	fb := `
FUNCTION_BLOCK Counter
	VAR_OUTPUT
		total : INT;
	END_VAR
	total := total + 1;
END_FUNCTION_BLOCK
`

	prog := `
PROGRAM Main
	VAR
		c : Counter;
	END_VAR
	c();
END_PROGRAM
`

	result := Compile(testLogger(), []*source.File{
		file("counter.st", fb),
		file("main.st", prog),
	})

	for _, d := range result.Diags.Diagnostics() {
		if d.Code == "E048" {
			t.Fatalf("unexpected unresolved reference: %v", d)
		}
	}

	if result.Index.FindPOU("Counter").IsEmpty() {
		t.Fatalf("expected Counter (declared in a separate file) to resolve in the merged index")
	}
}

func TestCompile_DiagramDocumentIngestedAlongsideText(t *testing.T) {
	diagram := `{
		"pouName": "EarlyExit",
		"nodes": [
			{"localId": "ret1", "executionOrderId": 1, "kind": "Return"}
		]
	}`

	result := Compile(testLogger(), []*source.File{file("early.cfc", diagram)})

	if len(result.Units) != 1 || len(result.Units[0].POUs) != 1 {
		t.Fatalf("expected one POU ingested from the diagram document")
	}

	if result.Units[0].POUs[0].Name != "EarlyExit" {
		t.Fatalf("expected POU name EarlyExit, got %q", result.Units[0].POUs[0].Name)
	}
}

func TestCompile_MalformedDiagramReportsE002(t *testing.T) {
	result := Compile(testLogger(), []*source.File{file("broken.cfc", "not json")})

	found := false
	for _, c := range codes(result) {
		if c == "E002" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an E002 diagnostic for the undecodable diagram document, got %v", codes(result))
	}
}
