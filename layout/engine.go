package layout

import (
	"fmt"
	"maps"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Engine 负责单张标签的排版：选字号、定页面尺寸、定文字与二维码位置。
// Engine 构造后不可变，同一请求总得到相同的几何结果。
type Engine struct {
	measurer Measurer
	cfg      engineConfig
}

// NewEngine 创建排版引擎。measurer 通常是渲染器本身。
func NewEngine(measurer Measurer, opts ...Option) (*Engine, error) {
	if measurer == nil {
		return nil, fmt.Errorf("layout: 缺少文本测量后端 Measurer")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.minFontSize <= 0 || cfg.minFontSize > cfg.maxFontSize {
		return nil, fmt.Errorf("layout: 字号范围无效 [%g, %g]", cfg.minFontSize, cfg.maxFontSize)
	}
	if cfg.padding <= 0 {
		return nil, fmt.Errorf("layout: 留白必须为正数，实际 %g", cfg.padding)
	}
	if cfg.qrSize <= 0 || cfg.qrPadding < 0 {
		return nil, fmt.Errorf("layout: 二维码尺寸无效 size=%g padding=%g", cfg.qrSize, cfg.qrPadding)
	}
	cfg.sizes = maps.Clone(cfg.sizes)
	return &Engine{measurer: measurer, cfg: cfg}, nil
}

// FitFontSize 从最大字号开始每次减 1，返回第一个使文本宽度不超过 maxWidth - padding 的字号。
// 都放不下时返回最小字号，文字溢出不视为错误。
func (e *Engine) FitFontSize(text string, font FontResource, maxWidth float64) (float64, error) {
	limit := maxWidth - e.cfg.padding
	for size := e.cfg.maxFontSize; size > e.cfg.minFontSize; size-- {
		w, err := e.measure(text, font, size)
		if err != nil {
			return 0, err
		}
		if w <= limit {
			return size, nil
		}
	}
	return e.cfg.minFontSize, nil
}

// ResolveFontSize 根据字号偏好与介质得到最终字号，结果总在 [min, max] 区间内。
func (e *Engine) ResolveFontSize(text string, font FontResource, m Medium, pref Size) (float64, error) {
	if pref == "" {
		pref = DefaultSize(m)
	}
	if pref == SizeAuto {
		if m.Kind == FixedSize {
			return e.FitFontSize(text, font, m.Width)
		}
		// 色带没有宽度约束，退回中号
		pref = SizeMedium
	}
	size, ok := e.cfg.sizes[pref]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSize, pref)
	}
	return e.clamp(size), nil
}

// DefaultSize 返回介质的默认字号偏好：定长标签缩放适配，色带用中号。
func DefaultSize(m Medium) Size {
	if m.Kind == FixedSize {
		return SizeAuto
	}
	return SizeMedium
}

// Dimensions 计算页面尺寸。FixedSize 介质与文本无关；VariableWidth 介质宽度为
// 文本宽度 + 留白，有二维码时再加上二维码及其间距。
func (e *Engine) Dimensions(m Medium, text string, font FontResource, fontSize float64, withQR bool) (width, height float64, err error) {
	tw, err := e.measure(text, font, fontSize)
	if err != nil {
		return 0, 0, err
	}
	width, height = e.pageSize(m, tw, withQR)
	return width, height, nil
}

// Position 计算文字基线起点。FixedSize 介质水平垂直居中；VariableWidth 介质左对齐到固定边距。
// 垂直方向以字号近似字形高度。
func (e *Engine) Position(m Medium, text string, font FontResource, fontSize, pageWidth, pageHeight float64) (x, y float64, err error) {
	tw, err := e.measure(text, font, fontSize)
	if err != nil {
		return 0, 0, err
	}
	x, y = e.textOrigin(m, tw, fontSize, pageWidth, pageHeight)
	return x, y, nil
}

// QRGlyph 计算二维码图块位置，只用于带 URL 的 VariableWidth 介质。
func (e *Engine) QRGlyph(url string, textWidth, pageHeight float64) QRBox {
	return QRBox{
		Data: url,
		X:    textWidth + e.cfg.qrPadding,
		Y:    (pageHeight - e.cfg.qrSize) / 2,
		Size: e.cfg.qrSize,
	}
}

// Layout 排版一张标签，得到可直接渲染的一页。文字与二维码总在同一页。
func (e *Engine) Layout(req Request) (Page, error) {
	text := norm.NFC.String(req.Text)
	if strings.TrimSpace(text) == "" {
		return Page{}, ErrNoText
	}
	m := req.Medium
	if err := validateMedium(m); err != nil {
		return Page{}, err
	}

	display, url := text, ""
	if m.Kind == VariableWidth {
		display, url, _ = ExtractURL(text)
	}

	fontSize, err := e.ResolveFontSize(display, req.Font, m, req.Size)
	if err != nil {
		return Page{}, err
	}
	tw, err := e.measure(display, req.Font, fontSize)
	if err != nil {
		return Page{}, err
	}
	width, height := e.pageSize(m, tw, url != "")
	x, y := e.textOrigin(m, tw, fontSize, width, height)

	page := Page{
		Medium: m.Name,
		Width:  width,
		Height: height,
		Text: TextBox{
			Content:  display,
			X:        x,
			Y:        y,
			Width:    tw,
			Font:     req.Font,
			FontSize: fontSize,
		},
	}
	if m.Kind == FixedSize && tw > m.Width-e.cfg.padding {
		page.Overflow = true
		e.logf("标签 %q 在 %gpt 下仍超出 %s 宽度（%.1fpt > %.1fpt）", display, fontSize, m.Name, tw, m.Width-e.cfg.padding)
	}

	if url != "" {
		glyph := e.QRGlyph(url, tw, height)
		if e.cfg.encoder == nil {
			return Page{}, fmt.Errorf("%w %q: 未配置编码器", ErrQREncode, url)
		}
		img, err := e.cfg.encoder.Encode(url)
		if err != nil {
			return Page{}, fmt.Errorf("%w %q: %w", ErrQREncode, url, err)
		}
		glyph.Image = img
		page.QR = &glyph
	}

	e.logf("%s %.1fx%.1fpt 字号 %g 文本 %q", m.Name, width, height, fontSize, display)
	return page, nil
}

func (e *Engine) pageSize(m Medium, textWidth float64, withQR bool) (float64, float64) {
	if m.Kind == FixedSize {
		return m.Width, m.Height
	}
	width := textWidth + e.cfg.padding
	if withQR {
		width += e.cfg.qrSize + e.cfg.qrPadding
	}
	return width, m.Height
}

func (e *Engine) textOrigin(m Medium, textWidth, fontSize, pageWidth, pageHeight float64) (float64, float64) {
	y := (pageHeight - fontSize) / 2
	if m.Kind == VariableWidth {
		return e.cfg.textMargin, y
	}
	return (pageWidth - textWidth) / 2, y
}

func (e *Engine) measure(text string, font FontResource, size float64) (float64, error) {
	w, err := e.measurer.TextWidth(text, font, size)
	if err != nil {
		return 0, fmt.Errorf("layout: 测量文本 %q 失败: %w", text, err)
	}
	return w, nil
}

func (e *Engine) clamp(size float64) float64 {
	return min(max(size, e.cfg.minFontSize), e.cfg.maxFontSize)
}

func (e *Engine) logf(format string, args ...any) {
	if e.cfg.logger != nil {
		e.cfg.logger.Printf(format, args...)
	}
}

func validateMedium(m Medium) error {
	if m.Height <= 0 {
		return fmt.Errorf("%w: %q 高度无效", ErrUnknownMedium, m.Name)
	}
	if m.Kind == FixedSize && m.Width <= 0 {
		return fmt.Errorf("%w: %q 宽度无效", ErrUnknownMedium, m.Name)
	}
	if m.Kind != FixedSize && m.Kind != VariableWidth {
		return fmt.Errorf("%w: %q 类型无效", ErrUnknownMedium, m.Name)
	}
	return nil
}
