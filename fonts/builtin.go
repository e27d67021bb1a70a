package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

const builtinPrefix = "builtin:"

// Load 返回内置字体的字节数据，name 可写为 "builtin:sans-serif" 或直接 "sans-serif"。
// 通用族按字重挑选字形：700 及以上用 Go Bold，500 至 699 用 Go Medium，其余用 Go Regular；
// monospace 在 700 及以上用 Go Mono Bold。go-* 名称直接指定字形，忽略字重。
func Load(name string, weight int) ([]byte, error) {
	switch key(name) {
	case "sans-serif", "serif", "system-ui":
		switch {
		case weight >= 700:
			return gobold.TTF, nil
		case weight >= 500:
			return gomedium.TTF, nil
		}
		return goregular.TTF, nil
	case "monospace":
		if weight >= 700 {
			return gomonobold.TTF, nil
		}
		return gomono.TTF, nil
	case "go", "go-regular":
		return goregular.TTF, nil
	case "go-medium":
		return gomedium.TTF, nil
	case "go-bold":
		return gobold.TTF, nil
	case "go-mono":
		return gomono.TTF, nil
	case "go-mono-bold":
		return gomonobold.TTF, nil
	}
	return nil, fmt.Errorf("找不到内置字体 %s", name)
}

// IsGeneric reports whether family names a CSS generic family.
func IsGeneric(family string) bool {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "sans-serif", "serif", "monospace", "system-ui":
		return true
	}
	return false
}

// IsBuiltin 判断 name 是否应由内置字体提供：通用族或带 builtin: 前缀的名称。
func IsBuiltin(name string) bool {
	if IsGeneric(name) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), builtinPrefix)
}

func key(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSpace(strings.TrimPrefix(name, builtinPrefix))
}
