package dsl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/legenda/dsl"
)

const sampleDSL = `
// legenda de promoção
legenda Promo v1 {
  family: [
    "Montserrat"
    "sans-serif"
  ]
  size: 64px; max-chars: 28

  style weight light color #fff {
    size: 5%
  }

  background #101418
  margin x 10% top 12.5%
  format story
  format square 1200 1200

  /* texto principal */
  text {
    "Olá, ${user.name}!"
  }
  "rodapé"
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Promo" {
		t.Fatalf("expected document name Promo, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if doc.Body == nil {
		t.Fatalf("expected body")
	}

	stmts := doc.Body.Statements
	if len(stmts) != 10 {
		t.Fatalf("expected 10 statements, got %d", len(stmts))
	}

	family := stmts[0].Property
	if family == nil || family.Key != "family" || family.Value.List == nil {
		t.Fatalf("expected family list property, got %#v", stmts[0])
	}
	if n := len(family.Value.List.Items); n != 2 {
		t.Fatalf("expected 2 family entries, got %d", n)
	}
	if v := family.Value.List.Items[1].String; v == nil || string(*v) != "sans-serif" {
		t.Fatalf("unexpected second family entry")
	}

	size := stmts[1].Property
	if size == nil || size.Value.Number == nil || *size.Value.Number != "64px" {
		t.Fatalf("expected size 64px, got %#v", stmts[1])
	}
	maxChars := stmts[2].Property
	if maxChars == nil || maxChars.Key != "max-chars" || *maxChars.Value.Number != "28" {
		t.Fatalf("expected max-chars assignment, got %#v", stmts[2])
	}

	style := stmts[3].Command
	if style == nil || style.Name != "style" {
		t.Fatalf("expected style command, got %#v", stmts[3])
	}
	if len(style.Args) != 4 {
		t.Fatalf("expected 4 style args, got %d", len(style.Args))
	}
	if style.Args[3].Kind != "Color" || style.Args[3].Value != "#fff" {
		t.Fatalf("expected color arg, got %#v", style.Args[3])
	}
	if style.Block == nil || len(style.Block.Statements) != 1 {
		t.Fatalf("expected style block with one statement")
	}
	if v := style.Block.Statements[0].Property.Value.Number; v == nil || *v != "5%" {
		t.Fatalf("expected percent size in style block")
	}

	margin := stmts[5].Command
	if margin == nil || len(margin.Args) != 4 || margin.Args[3].Value != "12.5%" {
		t.Fatalf("unexpected margin command %#v", stmts[5])
	}

	square := stmts[7].Command
	if square == nil || len(square.Args) != 3 || square.Args[1].Kind != "Number" {
		t.Fatalf("unexpected format command %#v", stmts[7])
	}

	text := stmts[8].Command
	if text == nil || text.Name != "text" || text.Block == nil {
		t.Fatalf("expected text command with block")
	}
	literal := text.Block.Statements[0].Text
	if literal == nil || string(literal.Value) != "Olá, ${user.name}!" {
		t.Fatalf("unexpected text literal %#v", literal)
	}

	if stmts[9].Text == nil || string(stmts[9].Text.Value) != "rodapé" {
		t.Fatalf("expected trailing bare text literal")
	}
}

func TestParseStringArgsAreUnquoted(t *testing.T) {
	doc, err := dsl.Parse(strings.NewReader(`legenda T v1 { format "meu formato" 800 600 }`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cmd := doc.Body.Statements[0].Command
	if cmd == nil || len(cmd.Args) != 3 {
		t.Fatalf("unexpected command %#v", doc.Body.Statements[0])
	}
	if cmd.Args[0].Value != "meu formato" || cmd.Args[0].Raw != `"meu formato"` {
		t.Fatalf("string arg not unquoted: %#v", cmd.Args[0])
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		`doc T v1 { "x" }`,
		`legenda T v1 { "x"`,
		`legenda T { "x" }`,
		`legenda T v1 { [ }`,
	}
	for _, src := range bad {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}

func TestParseFileReportsPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quebrado.legenda")
	if err := os.WriteFile(path, []byte("legenda T v1 {\n  size: 10px\n  ]\n}\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	_, err := dsl.ParseFile(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "quebrado.legenda:3") {
		t.Fatalf("error should carry file and line, got %v", err)
	}
	if _, err := dsl.ParseFile(filepath.Join(t.TempDir(), "ausente.legenda")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
