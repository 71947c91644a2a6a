package layout

import (
	"fmt"
	"sort"
	"strings"
)

// 内置介质。Dymo 尺寸按横向放置记录（宽 > 高）。
var media = map[string]Medium{
	// Dymo 30336，2-1/8" x 1"
	"dymo":       {Name: "dymo", Kind: FixedSize, Width: 153, Height: 72},
	"dymo-30252": {Name: "dymo-30252", Kind: FixedSize, Width: 252, Height: 81},
	"dymo-11354": {Name: "dymo-11354", Kind: FixedSize, Width: Mm(57).ToPT(), Height: Mm(32).ToPT()},
	"ptouch":     {Name: "ptouch", Kind: VariableWidth, Height: Mm(12).ToPT()},
	"ptouch-6":   {Name: "ptouch-6", Kind: VariableWidth, Height: Mm(6).ToPT()},
	"ptouch-9":   {Name: "ptouch-9", Kind: VariableWidth, Height: Mm(9).ToPT()},
	"ptouch-12":  {Name: "ptouch-12", Kind: VariableWidth, Height: Mm(12).ToPT()},
	"ptouch-18":  {Name: "ptouch-18", Kind: VariableWidth, Height: Mm(18).ToPT()},
	"ptouch-24":  {Name: "ptouch-24", Kind: VariableWidth, Height: Mm(24).ToPT()},
}

// LookupMedium 按名称（不区分大小写）查找内置介质。
func LookupMedium(name string) (Medium, error) {
	m, ok := media[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Medium{}, fmt.Errorf("%w: %q（可选：%s）", ErrUnknownMedium, name, strings.Join(MediumNames(), ", "))
	}
	return m, nil
}

// MediumNames 返回排序后的内置介质名称。
func MediumNames() []string {
	names := make([]string, 0, len(media))
	for name := range media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CustomMedium 由宽高构造介质：width 为零时得到 VariableWidth 介质。
func CustomMedium(name string, width, height Length) (Medium, error) {
	h := height.ToPT()
	if h <= 0 {
		return Medium{}, fmt.Errorf("%w: 介质 %s 缺少有效高度", ErrUnknownMedium, name)
	}
	if width.IsZero() {
		return Medium{Name: name, Kind: VariableWidth, Height: h}, nil
	}
	w := width.ToPT()
	if w <= 0 {
		return Medium{}, fmt.Errorf("%w: 介质 %s 宽度无效 %s", ErrUnknownMedium, name, width)
	}
	return Medium{Name: name, Kind: FixedSize, Width: w, Height: h}, nil
}

// ParseSize 解析 S/M/L/auto（不区分大小写），空串返回 ""，表示按介质取默认值。
func ParseSize(token string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "":
		return "", nil
	case "s", "small":
		return SizeSmall, nil
	case "m", "medium":
		return SizeMedium, nil
	case "l", "large":
		return SizeLarge, nil
	case "auto", "fit":
		return SizeAuto, nil
	default:
		return "", fmt.Errorf("%w: %q（可选：S, M, L, auto）", ErrUnknownSize, token)
	}
}
