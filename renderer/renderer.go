package renderer

import "github.com/ByLCY/legenda/layout"

// Renderer 将一个画幅绘制为最终文件，例如 PNG 或 PDF。
type Renderer interface {
	Render(frame layout.Frame) (*Output, error)
}

// Output 为单个画幅的渲染结果。
type Output struct {
	Format string             // 文件格式：png 或 pdf
	Data   []byte             // 编码后的文件内容
	Lines  []layout.DrawnLine // 实际绘制的行
	Height float64            // 文案占用的总高度（px）
}
