package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/labelgen/fonts"
	"github.com/ByLCY/labelgen/layout"
	"github.com/ByLCY/labelgen/renderer"
)

// Renderer draws label pages via github.com/tdewolff/canvas and measures text
// with the same font faces, so layout and output always agree.
//
// Layout works in points with the origin at the bottom-left corner; canvas
// works in millimeters. Conversion happens only at this boundary.
type Renderer struct {
	baseDir string

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// NewRenderer creates a renderer; relative font paths are resolved against baseDir.
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{
		baseDir:      baseDir,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// Render renders every page of the result into one PDF and closes it once.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Measurer：返回文本在给定字号（pt）下的宽度（pt）。
func (r *Renderer) TextWidth(text string, font layout.FontResource, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, fontSize)
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(text)), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	tb := page.Text
	if tb.Content != "" {
		face, err := r.fontFace(tb.Font, tb.FontSize)
		if err != nil {
			return err
		}
		// (X, Y) 为基线起点，canvas 默认坐标系同样以左下角为原点
		ctx.DrawText(toMm(tb.X), toMm(tb.Y), canvas.NewTextLine(face, tb.Content, canvas.Left))
	}
	if page.QR != nil {
		return drawQR(ctx, *page.QR)
	}
	return nil
}

func drawQR(ctx *canvas.Context, qr layout.QRBox) error {
	if qr.Image == nil {
		return fmt.Errorf("二维码 %q 缺少位图", qr.Data)
	}
	px := qr.Image.Bounds().Dx()
	if px <= 0 || qr.Size <= 0 {
		return fmt.Errorf("二维码 %q 尺寸无效", qr.Data)
	}
	ctx.DrawImage(toMm(qr.X), toMm(qr.Y), qr.Image, canvas.DPMM(float64(px)/toMm(qr.Size)))
	return nil
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, color.Black, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	data, err := r.loadFontBytes(font)
	if err != nil {
		return nil, err
	}
	name := font.Name
	if name == "" {
		name = key
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = "builtin:" + fonts.Default
	}
	if strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:") {
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func fontCacheKey(font layout.FontResource) string {
	if font.Src == "" {
		return "builtin:" + fonts.Default
	}
	return font.Src
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
