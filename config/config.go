package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ByLCY/legenda/layout"
	canvasrenderer "github.com/ByLCY/legenda/renderer/canvas"
)

// Config 为服务级默认值，模板中声明的属性优先于这里的取值。
type Config struct {
	Fonts       map[string]string `yaml:"fonts"` // family -> 字体文件路径
	SystemFonts *bool             `yaml:"system_fonts"`
	Family      []string          `yaml:"family"`
	Size        string            `yaml:"size"`
	Weight      string            `yaml:"weight"`
	Color       string            `yaml:"color"`
	Background  string            `yaml:"background"`
	MaxChars    int               `yaml:"max_chars"`
	Margin      struct {
		X   string `yaml:"x"`
		Top string `yaml:"top"`
	} `yaml:"margin"`
	Formats  []Format `yaml:"formats"`
	Output   string   `yaml:"output"`
	LogLevel string   `yaml:"log_level"`
}

// Format 只写 name 时使用内置画幅（story、post）。
type Format struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func LoadConfig(configPath string) (*Config, error) {
	config := Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", configPath, err)
	}

	return &config, nil
}

// Defaults 将配置合并到内置默认值之上。
func (c *Config) Defaults() (layout.Defaults, error) {
	d := layout.DefaultOptions().Defaults
	if len(c.Family) > 0 {
		d.Family = append([]string(nil), c.Family...)
	}
	if c.Size != "" {
		l, err := layout.ParseLength(c.Size)
		if err != nil {
			return d, fmt.Errorf("配置项 size 无效: %w", err)
		}
		d.Size = l
	}
	if c.Weight != "" {
		w, err := layout.ParseWeight(c.Weight)
		if err != nil {
			return d, err
		}
		d.Weight = w
	}
	if c.Color != "" {
		col, err := layout.ParseColor(c.Color)
		if err != nil {
			return d, err
		}
		d.Color = col
	}
	if c.Background != "" {
		col, err := layout.ParseColor(c.Background)
		if err != nil {
			return d, err
		}
		d.Background = col
	}
	if c.MaxChars < 0 {
		return d, fmt.Errorf("配置项 max_chars 不能为负数: %d", c.MaxChars)
	}
	if c.MaxChars > 0 {
		d.MaxChars = c.MaxChars
	}
	if c.Margin.X != "" {
		l, err := layout.ParseLength(c.Margin.X)
		if err != nil {
			return d, fmt.Errorf("配置项 margin.x 无效: %w", err)
		}
		d.Margin.X = l
	}
	if c.Margin.Top != "" {
		l, err := layout.ParseLength(c.Margin.Top)
		if err != nil {
			return d, fmt.Errorf("配置项 margin.top 无效: %w", err)
		}
		d.Margin.Top = l
	}
	if err := CheckOutput(c.Output); err != nil {
		return d, fmt.Errorf("配置项 output 无效: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return d, err
	}
	if len(c.Formats) > 0 {
		d.Formats = nil
		for _, f := range c.Formats {
			resolved, err := f.resolve()
			if err != nil {
				return d, err
			}
			d.Formats = append(d.Formats, resolved)
		}
	}
	return d, nil
}

func (f Format) resolve() (layout.Format, error) {
	if f.Width == 0 && f.Height == 0 {
		preset, ok := layout.Formats[strings.ToLower(f.Name)]
		if !ok {
			return layout.Format{}, fmt.Errorf("未知画幅 %s，请给出 width 与 height", f.Name)
		}
		return preset, nil
	}
	if f.Name == "" || f.Width <= 0 || f.Height <= 0 {
		return layout.Format{}, fmt.Errorf("画幅 %q 的尺寸无效: %dx%d", f.Name, f.Width, f.Height)
	}
	return layout.Format{Name: f.Name, Width: f.Width, Height: f.Height}, nil
}

// CheckOutput 校验输出格式，空值表示使用默认的 png。
func CheckOutput(format string) error {
	switch strings.ToLower(format) {
	case "", canvasrenderer.FormatPNG, canvasrenderer.FormatPDF:
		return nil
	}
	return fmt.Errorf("不支持的输出格式 %q，可选 png 或 pdf", format)
}

// RendererOptions 构造 canvas 渲染器参数。format 非空时覆盖配置中的 output。
func (c *Config) RendererOptions(format string, logger *slog.Logger) canvasrenderer.Options {
	if format == "" {
		format = c.Output
	}
	fonts := make(map[string]canvasrenderer.Resource, len(c.Fonts))
	for family, path := range c.Fonts {
		fonts[family] = canvasrenderer.Resource{Path: path}
	}
	systemFonts := true
	if c.SystemFonts != nil {
		systemFonts = *c.SystemFonts
	}
	return canvasrenderer.Options{
		Format:      format,
		Fonts:       fonts,
		SystemFonts: systemFonts,
		Logger:      logger,
	}
}

// Level 解析 log_level（debug、info、warn、error），为空时返回 info。
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("配置项 log_level 无效: %w", err)
	}
	return level, nil
}
