package layout

// BuildOptions 配置模板构建阶段的默认值。
type BuildOptions struct {
	Defaults Defaults
}

// Defaults 为模板未声明的属性提供取值，通常来自配置文件。
type Defaults struct {
	Family     []string
	Size       Length
	Weight     int
	Color      Color
	Background Color
	Margin     Margin
	MaxChars   int
	Formats    []Format
}

// DefaultOptions returns the built-in defaults: 64px light Montserrat in
// white over a dark background, rendered as story and post.
func DefaultOptions() BuildOptions {
	formats := make([]Format, 0, len(DefaultFormats))
	for _, name := range DefaultFormats {
		formats = append(formats, Formats[name])
	}
	return BuildOptions{Defaults: Defaults{
		Family:     append([]string(nil), DefaultFamily...),
		Size:       Length{Value: 64, Unit: UnitPX},
		Weight:     WeightLight,
		Color:      White,
		Background: Ink,
		Margin:     DefaultMargin,
		MaxChars:   DefaultMaxChars,
		Formats:    formats,
	}}
}
