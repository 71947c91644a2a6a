package layout

import (
	"image"
	"log"
)

// Measurer 负责测量单行文本宽度，单位 pt。由渲染器实现。
type Measurer interface {
	TextWidth(text string, font FontResource, fontSize float64) (float64, error)
}

// QREncoder 将 URL 编码为黑白位图。数据过长等失败必须以错误返回。
type QREncoder interface {
	Encode(data string) (image.Image, error)
}

// Option 以函数式选项配置 Engine。
type Option func(*engineConfig)

type engineConfig struct {
	sizes       map[Size]float64
	maxFontSize float64
	minFontSize float64
	padding     float64
	textMargin  float64
	qrSize      float64
	qrPadding   float64
	encoder     QREncoder
	logger      *log.Logger
}

// DefaultSizes 是 S/M/L 到字号（pt）的映射。
var DefaultSizes = map[Size]float64{
	SizeSmall:  8,
	SizeMedium: 12,
	SizeLarge:  18,
}

func defaultConfig() engineConfig {
	return engineConfig{
		sizes:       DefaultSizes,
		maxFontSize: 72,
		minFontSize: 6,
		padding:     10,
		textMargin:  5,
		qrSize:      40,
		qrPadding:   10,
	}
}

// WithSizes 替换 S/M/L 字号表。表在构造时复制，之后不可变。
func WithSizes(sizes map[Size]float64) Option {
	return func(c *engineConfig) {
		c.sizes = sizes
	}
}

// WithFontRange 设置缩放适配的字号上下限。
func WithFontRange(min, max float64) Option {
	return func(c *engineConfig) {
		c.minFontSize = min
		c.maxFontSize = max
	}
}

// WithPadding 设置文字两侧预留的总留白。
func WithPadding(padding float64) Option {
	return func(c *engineConfig) {
		c.padding = padding
	}
}

// WithTextMargin 设置 VariableWidth 介质上文字的左边距。
func WithTextMargin(margin float64) Option {
	return func(c *engineConfig) {
		c.textMargin = margin
	}
}

// WithQRGeometry 设置二维码边长与其左侧间距。
func WithQRGeometry(size, padding float64) Option {
	return func(c *engineConfig) {
		c.qrSize = size
		c.qrPadding = padding
	}
}

// WithQREncoder 设置二维码编码器。未设置时遇到 URL 会报错而不是静默丢弃。
func WithQREncoder(enc QREncoder) Option {
	return func(c *engineConfig) {
		c.encoder = enc
	}
}

// WithLogger 打开诊断日志（溢出提示与每页摘要）。
func WithLogger(l *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = l
	}
}
