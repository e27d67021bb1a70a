package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ByLCY/legenda/config"
	"github.com/ByLCY/legenda/dsl"
	"github.com/ByLCY/legenda/layout"
	"github.com/ByLCY/legenda/renderer"
	canvasrenderer "github.com/ByLCY/legenda/renderer/canvas"
)

func main() {
	input := flag.String("in", "", "模板文件路径")
	text := flag.String("text", "", "直接渲染的文案（未指定 -in 时使用）")
	dataJSON := flag.String("data", "", "绑定到模板占位符的 JSON 数据")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	output := flag.String("out", "output", "输出目录")
	format := flag.String("format", "", "输出格式 png 或 pdf（默认取配置，否则 png）")
	debug := flag.String("debug", "", "排版调试 JSON 输出路径")
	dryRun := flag.Bool("dry-run", false, "只折行并输出调试 JSON，不生成图片")
	verbose := flag.Bool("v", false, "输出 debug 级别日志")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
		cfg = loaded
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString())

	defaults, err := cfg.Defaults()
	if err != nil {
		log.Fatalf("配置无效: %v", err)
	}
	if err := config.CheckOutput(*format); err != nil {
		log.Fatalf("-format 无效: %v", err)
	}

	var r renderer.Renderer = canvasrenderer.NewRendererWithOptions(cfg.RendererOptions(*format, logger))
	files, err := run(job{
		input:    *input,
		text:     *text,
		output:   *output,
		debug:    *debug,
		dryRun:   *dryRun,
		data:     inputData,
		defaults: defaults,
	}, r, logger)
	if err != nil {
		log.Fatalf("生成图片失败: %v", err)
	}
	for _, f := range files {
		fmt.Printf("已生成：%s\n", f)
	}
}

// job 是一次命令行调用的参数。
type job struct {
	input    string // 模板路径，优先于 text
	text     string
	output   string // 输出目录
	debug    string
	dryRun   bool // 只计算折行，跳过光栅化
	data     any
	defaults layout.Defaults
}

// run 串联解析、构建与渲染，返回写出的文件路径。
func run(j job, r renderer.Renderer, logger *slog.Logger) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	card, err := buildCard(j)
	if err != nil {
		return nil, err
	}
	logger.Debug("card built", "name", card.Name, "frames", len(card.Frames))

	if j.dryRun {
		return dryRun(j, card, r, logger)
	}

	if err := os.MkdirAll(j.output, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	var files []string
	reports := make([]layout.FrameReport, 0, len(card.Frames))
	for _, frame := range card.Frames {
		out, err := r.Render(frame)
		if err != nil {
			return files, fmt.Errorf("渲染画幅 %s 失败: %w", frame.Format.Name, err)
		}
		path := filepath.Join(j.output, fmt.Sprintf("%s-%s.%s", card.Name, frame.Format.Name, out.Format))
		if err := os.WriteFile(path, out.Data, 0o644); err != nil {
			return files, fmt.Errorf("写入文件 %s 失败: %w", path, err)
		}
		files = append(files, path)
		reports = append(reports, layout.FrameReport{Frame: frame, Lines: out.Lines, Height: out.Height})
	}

	if j.debug != "" {
		if err := writeDebug(reports, j.debug); err != nil {
			return files, err
		}
	}
	return files, nil
}

// lineBreaker 由可以脱离绘制表面测量文本的渲染器实现。
type lineBreaker interface {
	Measurer(style layout.Style) (layout.Measurer, error)
}

// dryRun 只按渲染器的字体度量折行，写出调试报告而不光栅化。
// 未指定 -debug 时报告写到 <out>/<card>-layout.json。
func dryRun(j job, card *layout.Card, r renderer.Renderer, logger *slog.Logger) ([]string, error) {
	lb, ok := r.(lineBreaker)
	if !ok {
		return nil, fmt.Errorf("渲染器 %T 不支持 dry-run", r)
	}
	reports := make([]layout.FrameReport, 0, len(card.Frames))
	for _, frame := range card.Frames {
		m, err := lb.Measurer(frame.Style)
		if err != nil {
			return nil, fmt.Errorf("画幅 %s 的字体不可用: %w", frame.Format.Name, err)
		}
		lines, err := layout.BreakLines(m, frame.Text, frame.MaxWidth, frame.MaxChars)
		if err != nil {
			return nil, fmt.Errorf("画幅 %s 折行失败: %w", frame.Format.Name, err)
		}
		// 与 RenderText 相同的逐行累加
		lh := frame.Style.LineHeight()
		cursorY := frame.Y
		drawn := make([]layout.DrawnLine, len(lines))
		for i, line := range lines {
			drawn[i] = layout.DrawnLine{Text: line, X: frame.X, Y: cursorY}
			cursorY += lh
		}
		reports = append(reports, layout.FrameReport{Frame: frame, Lines: drawn, Height: cursorY - frame.Y})
		logger.Info("frame laid out", "format", frame.Format.Name, "lines", len(lines))
	}

	path := j.debug
	if path == "" {
		path = filepath.Join(j.output, card.Name+"-layout.json")
	}
	if err := writeDebug(reports, path); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func buildCard(j job) (*layout.Card, error) {
	opts := layout.BuildOptions{Defaults: j.defaults}
	if j.input == "" {
		if j.text == "" {
			return nil, fmt.Errorf("需要指定 -in 模板或 -text 文案")
		}
		return layout.NewCard(j.text, j.data, opts), nil
	}

	doc, err := dsl.ParseFile(j.input)
	if err != nil {
		return nil, fmt.Errorf("解析模板 %s 失败: %w", j.input, err)
	}
	card, err := layout.Build(doc, j.data, opts)
	if err != nil {
		return nil, fmt.Errorf("构建卡片失败: %w", err)
	}
	return card, nil
}

func writeDebug(reports []layout.FrameReport, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(reports, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
