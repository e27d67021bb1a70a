package layout

// 该文件定义卡片、画幅与文本样式，供模板构建、渲染与调试 JSON 共用。

// Card 保存一段文案在所有输出画幅上的排版参数。
type Card struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Frames  []Frame `json:"frames"`
}

// Frame 描述一个输出画幅：尺寸、背景以及文本的锚点与宽度预算（单位：像素）。
type Frame struct {
	Format     Format  `json:"format"`
	Background Color   `json:"background"`
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	MaxWidth   float64 `json:"maxWidth"`
	MaxChars   int     `json:"maxChars"`
	Style      Style   `json:"style"`
}

// Format 为输出画幅，宽高均为像素。
type Format struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	White = Color{R: 255, G: 255, B: 255}
	Ink   = Color{R: 16, G: 20, B: 24}
)

// Style 是一次渲染的文字样式，渲染开始时应用一次，之后不再变化。
// Family 按顺序回退，最后一项通常是 sans-serif 之类的通用族。
type Style struct {
	Family   []string `json:"family"`
	Weight   int      `json:"weight"`
	Size     float64  `json:"size"` // px
	Align    string   `json:"align"`
	Baseline string   `json:"baseline"`
	Color    Color    `json:"color"`
}

// DefaultFamily is the fallback chain used when a template names none.
var DefaultFamily = []string{"Montserrat", "Montserrat Variable", "sans-serif"}

const (
	WeightLight   = 300
	WeightRegular = 400

	AlignCenter = "center"
	BaselineTop = "top"
)

// DefaultStyle returns the light, centered, top-anchored caption style.
func DefaultStyle(size float64) Style {
	return Style{
		Family:   append([]string(nil), DefaultFamily...),
		Weight:   WeightLight,
		Size:     size,
		Align:    AlignCenter,
		Baseline: BaselineTop,
		Color:    White,
	}
}

// LineHeight returns size * LineHeightRatio.
func (s Style) LineHeight() float64 { return s.Size * LineHeightRatio }

// FrameReport 记录一个画幅的实际绘制结果，用于调试输出。
type FrameReport struct {
	Frame  Frame       `json:"frame"`
	Lines  []DrawnLine `json:"lines"`
	Height float64     `json:"height"`
}
