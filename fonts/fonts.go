package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是标签默认使用的内置字体。
const Default = "go-bold"

var builtin = map[string][]byte{
	"go-regular":   goregular.TTF,
	"go-medium":    gomedium.TTF,
	"go-bold":      gobold.TTF,
	"go-mono":      gomono.TTF,
	"go-mono-bold": gomonobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-bold" 或直接 "go-bold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(name, "builtin:"), "built-in:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可选：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回排序后的内置字体名称。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin 判断 name 是否指向内置字体。
func IsBuiltin(name string) bool {
	_, err := Load(name)
	return err == nil
}
