package layout

import (
	"io"
	"log/slog"
	"strings"
)

// LineHeightRatio 行高与字号的固定比例。
const LineHeightRatio = 1.4

// Surface 是一次渲染所使用的绘制表面。Pen 在每次 RenderText 调用开始时只调用一次，
// 返回的 Pen 绑定该样式，调用期间不会再修改。
// Surface 本身不要求并发安全，并发渲染时每个请求应使用自己的 Surface。
type Surface interface {
	Pen(style Style) (Pen, error)
}

// Pen measures and fills text under one fixed Style.
type Pen interface {
	Measurer
	DrawText(text string, x, y float64) error
}

type renderConfig struct {
	logger   *slog.Logger
	maxChars int
}

// RenderOption customizes a RenderText call.
type RenderOption func(*renderConfig)

// WithLogger attaches a leveled logger to the render boundary.
func WithLogger(logger *slog.Logger) RenderOption {
	return func(c *renderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxChars overrides the per-line character budget.
func WithMaxChars(n int) RenderOption {
	return func(c *renderConfig) { c.maxChars = n }
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// RenderText 规范化文本、按段落折行，并从 y 开始逐行向下绘制，每行水平锚点均为 x。
// 返回消耗的总高度（行数 × 行高，不含下伸部补偿）。
func RenderText(s Surface, text string, x, y, maxWidth float64, style Style, opts ...RenderOption) (float64, error) {
	cfg := renderConfig{logger: discardLogger, maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger.Debug("render text", "chars", runeCount(text), "x", x, "y", y, "maxWidth", maxWidth, "size", style.Size)

	pen, err := s.Pen(style)
	if err != nil {
		return 0, err
	}
	lines, err := BreakLines(pen, text, maxWidth, cfg.maxChars)
	if err != nil {
		return 0, err
	}

	lineHeight := style.LineHeight()
	cursorY := y
	for _, line := range lines {
		if err := pen.DrawText(line, x, cursorY); err != nil {
			return 0, err
		}
		cursorY += lineHeight
	}
	height := cursorY - y
	cfg.logger.Debug("text rendered", "lines", len(lines), "height", height)
	return height, nil
}

// BreakLines normalizes text and wraps every explicit paragraph on its own.
// Explicit newlines are hard breaks: an empty paragraph yields an empty line.
func BreakLines(m Measurer, text string, maxWidth float64, maxChars int) ([]string, error) {
	paragraphs := strings.Split(Normalize(text), "\n")
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		wrapped, err := Wrap(p, maxWidth, maxChars, m)
		if err != nil {
			return nil, err
		}
		lines = append(lines, wrapped...)
	}
	return lines, nil
}

// DrawnLine 记录一次绘制调用。
type DrawnLine struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Recording wraps a Surface and keeps every line drawn through it.
type Recording struct {
	surface Surface
	lines   []DrawnLine
	pens    int
}

// Record returns a Surface that forwards to s and records draw calls.
func Record(s Surface) *Recording { return &Recording{surface: s} }

func (r *Recording) Pen(style Style) (Pen, error) {
	p, err := r.surface.Pen(style)
	if err != nil {
		return nil, err
	}
	r.pens++
	return &recordingPen{Pen: p, rec: r}, nil
}

// Lines returns the recorded draw calls in order.
func (r *Recording) Lines() []DrawnLine { return append([]DrawnLine(nil), r.lines...) }

// Pens reports how many times a Pen was requested.
func (r *Recording) Pens() int { return r.pens }

type recordingPen struct {
	Pen
	rec *Recording
}

func (p *recordingPen) DrawText(text string, x, y float64) error {
	if err := p.Pen.DrawText(text, x, y); err != nil {
		return err
	}
	p.rec.lines = append(p.rec.lines, DrawnLine{Text: text, X: x, Y: y})
	return nil
}
