package layout

import (
	"image"
	"path/filepath"
	"strings"
)

// 该文件定义标签请求与布局结果，供布局计算、渲染与调试 JSON 共用。
// 所有坐标与尺寸单位均为 pt，原点位于页面左下角（与 PDF 一致）。

// MediumKind 区分定长标签与按内容计算宽度的色带。
type MediumKind int

const (
	// FixedSize 表示宽高固定的模切标签（例如 Dymo）。
	FixedSize MediumKind = iota
	// VariableWidth 表示高度固定、宽度随内容变化的连续色带（例如 P-touch）。
	VariableWidth
)

func (k MediumKind) String() string {
	switch k {
	case FixedSize:
		return "fixed"
	case VariableWidth:
		return "variable-width"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出可读的介质类型。
func (k MediumKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Medium 描述一种标签介质。VariableWidth 介质忽略 Width。
type Medium struct {
	Name   string     `json:"name"`
	Kind   MediumKind `json:"kind"`
	Width  float64    `json:"width,omitempty"`
	Height float64    `json:"height"`
}

// Size 是字号偏好。SizeAuto 只对 FixedSize 介质做缩放适配。
type Size string

const (
	SizeAuto   Size = "auto"
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

// FontResource 描述字体资源，Src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Request 是一张标签的输入。Size 为空时按介质取默认值。
type Request struct {
	Text   string       `json:"text"`
	Medium Medium       `json:"medium"`
	Size   Size         `json:"size,omitempty"`
	Font   FontResource `json:"font"`
}

// Result 保存一批标签的页面与文档元信息，每个请求对应一页。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸与可以直接渲染的元素。
type Page struct {
	Medium   string  `json:"medium"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Text     TextBox `json:"text"`
	QR       *QRBox  `json:"qr,omitempty"`
	Overflow bool    `json:"overflow,omitempty"` // 最小字号下文字仍超出页面
}

// TextBox 表示一个已经排好坐标的单行文本，(X, Y) 为基线起点。
type TextBox struct {
	Content  string       `json:"content"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Width    float64      `json:"width"`
	Font     FontResource `json:"font"`
	FontSize float64      `json:"fontSize"`
}

// QRBox 描述二维码图块的位置与位图，(X, Y) 为左下角。
type QRBox struct {
	Data  string      `json:"data"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Size  float64     `json:"size"`
	Image image.Image `json:"-"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// ParseFont 将字体参数转换为 FontResource：带路径分隔符或 .ttf/.otf 后缀的视为字体文件，
// 其余视为内置字体名称（例如 go-bold）。
func ParseFont(v string) FontResource {
	v = strings.TrimSpace(v)
	if v == "" {
		return FontResource{}
	}
	ext := strings.ToLower(filepath.Ext(v))
	if strings.ContainsAny(v, `/\`) || ext == ".ttf" || ext == ".otf" {
		return FontResource{Name: strings.TrimSuffix(filepath.Base(v), filepath.Ext(v)), Src: v}
	}
	name := strings.TrimPrefix(strings.TrimPrefix(v, "builtin:"), "built-in:")
	return FontResource{Name: name, Src: "builtin:" + name}
}
