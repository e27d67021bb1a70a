package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used by templates and config, and the
// margin policy that turns a format into text anchors.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers, read as pixels
	UnitPX                  // pixels
	UnitPT                  // points at 96 dpi
	UnitPercent             // percent of a reference length
)

// PtToPx converts CSS points to pixels.
const PtToPx = 96.0 / 72.0

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Pixels resolves the length; percentages are taken from reference.
func (l Length) Pixels(reference float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses "64", "64px", "12pt" or "10%".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("长度 %q 不能为负数", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// Margin 文本区域的边距：X 为左右两侧各自的边距，Top 为顶部边距。
type Margin struct {
	X   Length `json:"x"`
	Top Length `json:"top"`
}

// DefaultMargin keeps 10% on each horizontal side and 10% on top.
var DefaultMargin = Margin{
	X:   Length{Value: 10, Unit: UnitPercent},
	Top: Length{Value: 10, Unit: UnitPercent},
}

// Geometry 计算文本锚点：x 取画幅水平中心，y 取顶部边距，maxWidth 为扣除两侧边距后的宽度。
func Geometry(f Format, m Margin) (x, y, maxWidth float64) {
	w := float64(f.Width)
	h := float64(f.Height)
	side := m.X.Pixels(w)
	maxWidth = w - 2*side
	if maxWidth < 0 {
		maxWidth = 0
	}
	return w / 2, m.Top.Pixels(h), maxWidth
}

// Formats are the presets rendered for every caption by default.
var Formats = map[string]Format{
	"story": {Name: "story", Width: 1080, Height: 1920},
	"post":  {Name: "post", Width: 1080, Height: 1080},
}

// DefaultFormats lists preset names in render order.
var DefaultFormats = []string{"story", "post"}
