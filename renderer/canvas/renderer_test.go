package canvasrenderer

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/legenda/layout"
)

// builtinOnly 不查找系统字体，保证测试结果与运行环境无关。
func builtinOnly(format string) *Renderer {
	return NewRendererWithOptions(Options{Format: format, SystemFonts: false})
}

func testFrame() layout.Frame {
	style := layout.DefaultStyle(24)
	return layout.Frame{
		Format:     layout.Format{Name: "test", Width: 320, Height: 200},
		Background: layout.Ink,
		Text:       "Olá, mundo! Promoção de verão (só hoje) com «desconto».",
		X:          160,
		Y:          20,
		MaxWidth:   256,
		MaxChars:   layout.DefaultMaxChars,
		Style:      style,
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestRenderPNG(t *testing.T) {
	frame := testFrame()
	out, err := builtinOnly(FormatPNG).Render(frame)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out.Format != FormatPNG {
		t.Fatalf("expected png output, got %s", out.Format)
	}
	img, err := png.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("unexpected image size %dx%d", b.Dx(), b.Dy())
	}

	// 左下角没有文字，应为背景色
	r, g, b, _ := img.At(2, 197).RGBA()
	if absDiff(r>>8, 16) > 3 || absDiff(g>>8, 20) > 3 || absDiff(b>>8, 24) > 3 {
		t.Fatalf("unexpected background pixel: %d %d %d", r>>8, g>>8, b>>8)
	}

	if len(out.Lines) < 2 {
		t.Fatalf("expected wrapped lines, got %+v", out.Lines)
	}
	if out.Lines[0].Y != frame.Y || out.Lines[0].X != frame.X {
		t.Fatalf("first line must start at the anchor, got %+v", out.Lines[0])
	}
	want := float64(len(out.Lines)) * frame.Style.LineHeight()
	if diff := out.Height - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("height expected %g, got %g", want, out.Height)
	}

	// 白色文字的像素范围：水平居中于 X，顶部紧贴 Y 之下，底部不超过文本块高度
	minX, minY, maxX, maxY := -1, -1, -1, -1
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r>>8 <= 128 {
				continue
			}
			if minX < 0 || x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if minY < 0 {
				minY = y
			}
			maxY = y
		}
	}
	if minX < 0 {
		t.Fatalf("no text pixels drawn")
	}
	if mid := float64(minX+maxX) / 2; math.Abs(mid-frame.X) > 8 {
		t.Fatalf("text not centered on x=%g: lit x[%d,%d]", frame.X, minX, maxX)
	}
	if top := float64(minY); top <= frame.Y || top >= frame.Y+frame.Style.Size {
		t.Fatalf("text top should sit just below y=%g, got %d", frame.Y, minY)
	}
	if bottom := float64(maxY); bottom >= frame.Y+want {
		t.Fatalf("text overflows its block: bottom %d, block ends at %g", maxY, frame.Y+want)
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := builtinOnly(FormatPDF).Render(testFrame())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(out.Data, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestMeasuredLinesFitWidth(t *testing.T) {
	r := builtinOnly(FormatPNG)
	style := layout.DefaultStyle(32)
	m, err := r.Measurer(style)
	if err != nil {
		t.Fatalf("measurer failed: %v", err)
	}
	text := "A promoção de verão começa amanhã: descontos de até 50% em toda a loja."
	const maxWidth = 300.0
	lines, err := layout.BreakLines(m, text, maxWidth, 40)
	if err != nil {
		t.Fatalf("break lines failed: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for i, line := range lines {
		body := strings.TrimRight(strings.TrimRight(line, " "), `.,;:!?»)}]"'`)
		if len(layout.Tokenize(body)) <= 1 {
			continue
		}
		w, _ := m.MeasureText(body)
		if w > maxWidth {
			t.Fatalf("line %d exceeds width: %q (%g)", i, line, w)
		}
	}

	// 字号越大，同一文本越宽
	big, err := r.Measurer(layout.DefaultStyle(64))
	if err != nil {
		t.Fatalf("measurer failed: %v", err)
	}
	small, _ := m.MeasureText("legenda")
	large, _ := big.MeasureText("legenda")
	if large <= small {
		t.Fatalf("width should grow with size: %g vs %g", small, large)
	}
}

func TestBuiltinFaceFollowsWeight(t *testing.T) {
	r := builtinOnly(FormatPNG)
	measure := func(weight int) float64 {
		style := layout.DefaultStyle(32)
		style.Family = []string{"sans-serif"}
		style.Weight = weight
		m, err := r.Measurer(style)
		if err != nil {
			t.Fatalf("measurer for weight %d failed: %v", weight, err)
		}
		w, err := m.MeasureText("Promoção de verão")
		if err != nil {
			t.Fatalf("measure failed: %v", err)
		}
		return w
	}
	light, regular, bold := measure(layout.WeightLight), measure(layout.WeightRegular), measure(700)
	if light != regular {
		t.Fatalf("light and regular share Go Regular: %g vs %g", light, regular)
	}
	// 粗体必须换用 Go Bold，而不是沿用常规字形
	if bold == regular {
		t.Fatalf("bold weight should load a bold face, width unchanged at %g", bold)
	}
}

func TestRenderFallsBackToBuiltinFamily(t *testing.T) {
	frame := testFrame()
	frame.Style.Family = []string{"Fonte Inexistente"}
	if _, err := builtinOnly(FormatPNG).Render(frame); err != nil {
		t.Fatalf("missing family should fall back to sans-serif: %v", err)
	}
}

func TestRenderRejectsInvalidFrames(t *testing.T) {
	r := builtinOnly(FormatPNG)

	frame := testFrame()
	frame.Style.Size = 0
	if _, err := r.Render(frame); err == nil {
		t.Fatalf("zero font size should fail")
	}

	frame = testFrame()
	frame.Format.Width = 0
	if _, err := r.Render(frame); err == nil {
		t.Fatalf("empty format should fail")
	}

	if _, err := builtinOnly("gif").Render(testFrame()); err == nil {
		t.Fatalf("unsupported format should fail")
	}
}

func TestFontStyleMapping(t *testing.T) {
	cases := map[int]canvas.FontStyle{
		0:   canvas.FontRegular,
		300: canvas.FontLight,
		400: canvas.FontRegular,
		500: canvas.FontMedium,
		600: canvas.FontSemiBold,
		700: canvas.FontBold,
		800: canvas.FontExtraBold,
		900: canvas.FontBlack,
	}
	for weight, want := range cases {
		if got := fontStyle(weight); got != want {
			t.Fatalf("weight %d mapped to %v, expected %v", weight, got, want)
		}
	}
}
