package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/legenda/binding"
	"github.com/ByLCY/legenda/dsl"
)

// Build 根据模板 AST 生成每个画幅的排版参数。data 用于替换文案中的 ${...} 占位符。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Card, error) {
	if doc == nil {
		return nil, fmt.Errorf("模板为空")
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("模板 %s 缺少内容", doc.Name)
	}

	params := newCardParams(opts.Defaults)
	var text strings.Builder
	hasText := false
	for _, stmt := range doc.Body.Statements {
		switch {
		case stmt.Property != nil:
			if err := params.apply(stmt.Property.Key, valueToString(stmt.Property.Value), stmt.Property.Value); err != nil {
				return nil, err
			}
		case stmt.Text != nil:
			text.WriteString(string(stmt.Text.Value))
			hasText = true
		case stmt.Command != nil:
			cmd := stmt.Command
			switch cmd.Name {
			case "text":
				if cmd.Block == nil {
					return nil, fmt.Errorf("text 语句缺少文本块")
				}
				text.WriteString(extractText(cmd.Block))
				hasText = true
			case "style":
				if err := handleStyle(cmd, params); err != nil {
					return nil, err
				}
			case "background":
				if len(cmd.Args) == 0 {
					return nil, fmt.Errorf("background 语句缺少颜色")
				}
				if err := params.apply("background", cmd.Args[0].Value, nil); err != nil {
					return nil, err
				}
			case "margin":
				if err := handleMargin(cmd, params); err != nil {
					return nil, err
				}
			case "format":
				if err := handleFormat(cmd, params); err != nil {
					return nil, err
				}
			default:
				// 未知命令忽略
				continue
			}
		}
	}
	if !hasText {
		return nil, fmt.Errorf("模板 %s 缺少 text 内容", doc.Name)
	}

	content := binding.Interpolate(text.String(), data)
	return params.card(doc.Name, doc.Version, content), nil
}

// NewCard 直接以一段文案和默认参数生成卡片。
func NewCard(text string, data any, opts BuildOptions) *Card {
	params := newCardParams(opts.Defaults)
	return params.card("caption", "v1", binding.Interpolate(text, data))
}

type cardParams struct {
	family       []string
	size         Length
	weight       int
	color        Color
	background   Color
	margin       Margin
	maxChars     int
	formats      []Format
	customFormat bool
}

func newCardParams(d Defaults) *cardParams {
	params := &cardParams{
		family:     append([]string(nil), d.Family...),
		size:       d.Size,
		weight:     d.Weight,
		color:      d.Color,
		background: d.Background,
		margin:     d.Margin,
		maxChars:   d.MaxChars,
		formats:    append([]Format(nil), d.Formats...),
	}
	if len(params.family) == 0 {
		params.family = append([]string(nil), DefaultFamily...)
	}
	if params.size.IsZero() {
		params.size = Length{Value: 64, Unit: UnitPX}
	}
	if params.weight <= 0 {
		params.weight = WeightLight
	}
	if params.maxChars <= 0 {
		params.maxChars = DefaultMaxChars
	}
	if params.margin == (Margin{}) {
		params.margin = DefaultMargin
	}
	if len(params.formats) == 0 {
		for _, name := range DefaultFormats {
			params.formats = append(params.formats, Formats[name])
		}
	}
	return params
}

func (s *cardParams) card(name, version, text string) *Card {
	card := &Card{Name: name, Version: version}
	for _, f := range s.formats {
		x, y, maxWidth := Geometry(f, s.margin)
		style := Style{
			Family:   append([]string(nil), s.family...),
			Weight:   s.weight,
			Size:     s.size.Pixels(float64(f.Width)),
			Align:    AlignCenter,
			Baseline: BaselineTop,
			Color:    s.color,
		}
		card.Frames = append(card.Frames, Frame{
			Format:     f,
			Background: s.background,
			Text:       text,
			X:          x,
			Y:          y,
			MaxWidth:   maxWidth,
			MaxChars:   s.maxChars,
			Style:      style,
		})
	}
	return card
}

// apply 设置单个属性。raw 为属性的字符串形式；val 非空时可提供数组等结构化取值。
func (s *cardParams) apply(key, raw string, val *dsl.Value) error {
	switch strings.ToLower(key) {
	case "family", "font":
		family := valueToStringSlice(val)
		if len(family) == 0 && raw != "" {
			family = splitList(raw)
		}
		if len(family) == 0 {
			return fmt.Errorf("family 不能为空")
		}
		s.family = family
	case "size":
		l, err := ParseLength(raw)
		if err != nil {
			return fmt.Errorf("size 属性无效: %w", err)
		}
		s.size = l
	case "weight":
		w, err := ParseWeight(raw)
		if err != nil {
			return err
		}
		s.weight = w
	case "color":
		c, err := ParseColor(raw)
		if err != nil {
			return err
		}
		s.color = c
	case "background":
		c, err := ParseColor(raw)
		if err != nil {
			return err
		}
		s.background = c
	case "max-chars", "maxchars":
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 {
			return fmt.Errorf("max-chars 必须是正整数: %q", raw)
		}
		s.maxChars = n
	case "margin-x":
		l, err := ParseLength(raw)
		if err != nil {
			return fmt.Errorf("margin-x 属性无效: %w", err)
		}
		s.margin.X = l
	case "margin-top":
		l, err := ParseLength(raw)
		if err != nil {
			return fmt.Errorf("margin-top 属性无效: %w", err)
		}
		s.margin.Top = l
	default:
		return fmt.Errorf("未知属性 %s", key)
	}
	return nil
}

// handleStyle 支持块语法 style { size: 64px } 与行内语法 style size 64px color #fff。
func handleStyle(cmd *dsl.Command, params *cardParams) error {
	attrs := parseArgs(cmd.Args)
	for _, key := range sortedKeys(attrs) {
		if err := params.apply(key, attrs[key], nil); err != nil {
			return err
		}
	}
	if cmd.Block == nil {
		return nil
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Property == nil {
			continue
		}
		p := stmt.Property
		if err := params.apply(p.Key, valueToString(p.Value), p.Value); err != nil {
			return err
		}
	}
	return nil
}

// handleMargin 解析 margin 10%、margin x 8% top 12% 两种写法。
func handleMargin(cmd *dsl.Command, params *cardParams) error {
	if len(cmd.Args) == 1 {
		l, err := ParseLength(cmd.Args[0].Value)
		if err != nil {
			return fmt.Errorf("margin 无效: %w", err)
		}
		params.margin = Margin{X: l, Top: l}
		return nil
	}
	attrs := parseArgs(cmd.Args)
	if len(attrs) == 0 {
		return fmt.Errorf("margin 语句缺少参数")
	}
	for _, key := range sortedKeys(attrs) {
		raw := attrs[key]
		switch key {
		case "x", "top":
			if err := params.apply("margin-"+key, raw, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("margin 不支持参数 %s", key)
		}
	}
	return nil
}

// handleFormat 解析 format story 或 format square 1200 1200。
// 模板中第一次出现 format 时会替换默认画幅列表。
func handleFormat(cmd *dsl.Command, params *cardParams) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("format 语句缺少名称")
	}
	name := cmd.Args[0].Value
	var f Format
	switch len(cmd.Args) {
	case 1:
		preset, ok := Formats[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("未知画幅 %s，请显式给出宽高", name)
		}
		f = preset
	case 3:
		w, errW := strconv.Atoi(cmd.Args[1].Value)
		h, errH := strconv.Atoi(cmd.Args[2].Value)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("画幅 %s 的宽高无效", name)
		}
		f = Format{Name: name, Width: w, Height: h}
	default:
		return fmt.Errorf("format 语句参数个数错误: %d", len(cmd.Args))
	}
	if !params.customFormat {
		params.formats = nil
		params.customFormat = true
	}
	params.formats = append(params.formats, f)
	return nil
}

func parseArgs(args []*dsl.Arg) map[string]string {
	result := map[string]string{}
	for cursor := 0; cursor < len(args)-1; cursor += 2 {
		result[args[cursor].Value] = args[cursor+1].Value
	}
	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

// ParseWeight 接受 100-900 的数值字重或 light、bold 等名称。
func ParseWeight(value string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(v); err == nil {
		if n < 100 || n > 900 {
			return 0, fmt.Errorf("字重 %d 超出 100-900 范围", n)
		}
		return n, nil
	}
	switch strings.ReplaceAll(v, "-", "") {
	case "thin":
		return 100, nil
	case "extralight":
		return 200, nil
	case "light":
		return 300, nil
	case "regular", "normal":
		return 400, nil
	case "medium":
		return 500, nil
	case "semibold", "demibold":
		return 600, nil
	case "bold":
		return 700, nil
	case "extrabold":
		return 800, nil
	case "black":
		return 900, nil
	}
	return 0, fmt.Errorf("无法识别的字重 %q", value)
}

// ParseColor parses #rgb or #rrggbb.
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	case 6:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	case val.List != nil:
		return strings.Join(valueToStringSlice(val), ",")
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil || val.List == nil {
		return nil
	}
	out := make([]string, 0, len(val.List.Items))
	for _, v := range val.List.Items {
		if s := valueToString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
