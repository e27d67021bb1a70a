package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/legenda/fonts"
	"github.com/ByLCY/legenda/layout"
	"github.com/ByLCY/legenda/renderer"
)

// canvas 以毫米为单位排版；这里令 1 个单位等于 1 像素，字号在创建字体面时换算为 pt。
const mmPerPt = 0.3527777777777778

const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Renderer draws caption frames via github.com/tdewolff/canvas.
type Renderer struct {
	format      string
	logger      *slog.Logger
	systemFonts bool

	// injected resources
	fontBlobs map[string][]byte // by family name

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Format      string              // png (default) or pdf
	Fonts       map[string]Resource // family name -> font file
	SystemFonts bool                // look up families missing from Fonts among installed fonts
	Logger      *slog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PNG renderer that resolves families from system fonts
// before falling back to the built-in faces.
func NewRenderer() *Renderer {
	return NewRendererWithOptions(Options{Format: FormatPNG, SystemFonts: true})
}

// NewRendererWithOptions creates a renderer with injected font resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		format:      strings.ToLower(opts.Format),
		logger:      opts.Logger,
		systemFonts: opts.SystemFonts,
		fontBlobs:   map[string][]byte{},
		families:    map[string]*canvas.FontFamily{},
	}
	if r.format == "" {
		r.format = FormatPNG
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				r.logger.Warn("font file unreadable", "family", name, "path", res.Path, "err", err)
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Render 绘制背景与文案，并按配置的格式编码。
func (r *Renderer) Render(frame layout.Frame) (*renderer.Output, error) {
	if frame.Format.Width <= 0 || frame.Format.Height <= 0 {
		return nil, fmt.Errorf("画幅 %s 尺寸无效: %dx%d", frame.Format.Name, frame.Format.Width, frame.Format.Height)
	}
	width := float64(frame.Format.Width)
	height := float64(frame.Format.Height)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(colorFromLayout(frame.Background))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点

	rec := layout.Record(&surface{r: r, ctx: ctx})
	textHeight, err := layout.RenderText(rec, frame.Text, frame.X, frame.Y, frame.MaxWidth, frame.Style,
		layout.WithMaxChars(frame.MaxChars),
		layout.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("绘制画幅 %s 的文案失败: %w", frame.Format.Name, err)
	}

	data, err := r.encode(c, frame)
	if err != nil {
		return nil, err
	}
	lines := rec.Lines()
	r.logger.Info("frame rendered", "format", frame.Format.Name, "lines", len(lines), "height", textHeight, "bytes", len(data))
	return &renderer.Output{
		Format: r.format,
		Data:   data,
		Lines:  lines,
		Height: textHeight,
	}, nil
}

// Measurer 返回指定样式下的测量能力，不绑定任何绘制表面。
func (r *Renderer) Measurer(style layout.Style) (layout.Measurer, error) {
	face, err := r.fontFace(style)
	if err != nil {
		return nil, err
	}
	return &pen{face: face}, nil
}

func (r *Renderer) encode(c *canvas.Canvas, frame layout.Frame) ([]byte, error) {
	var buf bytes.Buffer
	switch r.format {
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	case FormatPDF:
		writer := pdf.New(&buf, float64(frame.Format.Width), float64(frame.Format.Height), nil)
		writer.SetInfo(frame.Format.Name, "", "", "", "legenda")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %s", r.format)
	}
	return buf.Bytes(), nil
}

// surface 将 canvas.Context 适配为 layout.Surface。
type surface struct {
	r   *Renderer
	ctx *canvas.Context
}

func (s *surface) Pen(style layout.Style) (layout.Pen, error) {
	face, err := s.r.fontFace(style)
	if err != nil {
		return nil, err
	}
	return &pen{
		ctx:   s.ctx,
		face:  face,
		align: textAlign(style.Align),
		top:   style.Baseline == "" || style.Baseline == layout.BaselineTop,
	}, nil
}

type pen struct {
	ctx   *canvas.Context
	face  *canvas.FontFace
	align canvas.TextAlign
	top   bool
}

func (p *pen) MeasureText(text string) (float64, error) {
	return p.face.TextWidth(text), nil
}

func (p *pen) DrawText(text string, x, y float64) error {
	if p.ctx == nil {
		return errors.New("pen 未绑定绘制表面")
	}
	if text == "" {
		return nil
	}
	baseline := y
	if p.top {
		// 顶部对齐：行顶部加上字体上升部即为基线
		baseline += p.face.Metrics().Ascent
	}
	p.ctx.DrawText(x, baseline, canvas.NewTextLine(p.face, text, p.align))
	return nil
}

func (r *Renderer) fontFace(style layout.Style) (*canvas.FontFace, error) {
	if style.Size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %g", style.Size)
	}
	fs := fontStyle(style.Weight)
	family, err := r.ensureFontFamily(style.Family, style.Weight)
	if err != nil {
		return nil, err
	}
	return family.Face(style.Size/mmPerPt, colorFromLayout(style.Color), fs, canvas.FontNormal), nil
}

// ensureFontFamily 依次尝试候选字体族，全部失败时退回内置 sans-serif。
func (r *Renderer) ensureFontFamily(names []string, weight int) (*canvas.FontFamily, error) {
	fs := fontStyle(weight)
	key := fmt.Sprintf("%s|%d", strings.Join(names, ","), fs)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[key]; ok {
		return family, nil
	}

	candidates := append(append([]string(nil), names...), "sans-serif")
	var errs []error
	for _, name := range candidates {
		family := canvas.NewFontFamily(name)
		if err := r.loadFontIntoFamily(family, name, weight); err != nil {
			errs = append(errs, err)
			continue
		}
		r.families[key] = family
		if len(errs) > 0 {
			r.logger.Debug("font fallback", "requested", names, "using", name, "err", errors.Join(errs...))
		}
		return family, nil
	}
	return nil, fmt.Errorf("没有可用的字体: %w", errors.Join(errs...))
}

// loadFontIntoFamily 以 weight 对应的样式注册字体；内置族按字重挑选 Go 字形。
func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, name string, weight int) error {
	fs := fontStyle(weight)
	if blob, ok := r.fontBlobs[name]; ok {
		return family.LoadFont(blob, 0, fs)
	}
	if fonts.IsBuiltin(name) {
		data, err := fonts.Load(name, weight)
		if err != nil {
			return err
		}
		return family.LoadFont(data, 0, fs)
	}
	if r.systemFonts {
		return family.LoadSystemFont(name, fs)
	}
	return fmt.Errorf("字体 %s 未注册", name)
}

// fontStyle 将 CSS 字重映射为 canvas 字体样式。
func fontStyle(weight int) canvas.FontStyle {
	switch {
	case weight <= 0:
		return canvas.FontRegular
	case weight <= 300:
		return canvas.FontLight
	case weight < 500:
		return canvas.FontRegular
	case weight < 600:
		return canvas.FontMedium
	case weight < 700:
		return canvas.FontSemiBold
	case weight < 800:
		return canvas.FontBold
	case weight < 900:
		return canvas.FontExtraBold
	default:
		return canvas.FontBlack
	}
}

func textAlign(align string) canvas.TextAlign {
	switch strings.ToLower(align) {
	case "center", "":
		return canvas.Center
	case "right", "end":
		return canvas.Right
	default:
		return canvas.Left
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
