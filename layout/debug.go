package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将每个画幅的排版参数与实际绘制的行输出为 JSON，便于调试。
func WriteDebugJSON(reports []FrameReport, path string) error {
	if len(reports) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
