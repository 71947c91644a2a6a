package layout

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// stubMeasurer 以「字符数 × 字号 × 0.5」近似文本宽度，避免测试依赖真实字体。
type stubMeasurer struct{}

func (stubMeasurer) TextWidth(text string, font FontResource, fontSize float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5, nil
}

type stubEncoder struct{ err error }

func (s stubEncoder) Encode(data string) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return image.NewGray(image.Rect(0, 0, 8, 8)), nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithQREncoder(stubEncoder{})}, opts...)
	e, err := NewEngine(stubMeasurer{}, opts...)
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}
	return e
}

func mustMedium(t *testing.T, name string) Medium {
	t.Helper()
	m, err := LookupMedium(name)
	if err != nil {
		t.Fatalf("查找介质 %s 失败: %v", name, err)
	}
	return m
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// TestFitFontSizeShrinksMonotonically 断言返回值在区间内，且所有更大的字号都放不下。
func TestFitFontSizeShrinksMonotonically(t *testing.T) {
	e := newTestEngine(t)
	m := stubMeasurer{}
	const maxWidth = 153.0
	for _, text := range []string{"", "A", "HELLO", "Shelf A1 pantry", strings.Repeat("W", 40)} {
		size, err := e.FitFontSize(text, FontResource{}, maxWidth)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		if size < 6 || size > 72 {
			t.Fatalf("%q: 字号 %g 超出 [6, 72]", text, size)
		}
		for bigger := size + 1; bigger <= 72; bigger++ {
			w, _ := m.TextWidth(text, FontResource{}, bigger)
			if w <= maxWidth-10 {
				t.Fatalf("%q: 字号 %g 可以放下（宽 %g），却返回了 %g", text, bigger, w, size)
			}
		}
	}
}

func TestFitFontSizeFloor(t *testing.T) {
	e := newTestEngine(t)
	size, err := e.FitFontSize(strings.Repeat("M", 200), FontResource{}, 153)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 6 {
		t.Fatalf("放不下时应返回最小字号 6，实际 %g", size)
	}
}

func TestResolveFontSize(t *testing.T) {
	e := newTestEngine(t, WithSizes(map[Size]float64{SizeSmall: 2, SizeMedium: 12, SizeLarge: 100}))
	dymo := mustMedium(t, "dymo")
	ptouch := mustMedium(t, "ptouch")

	cases := []struct {
		name   string
		medium Medium
		pref   Size
		want   float64
	}{
		{"小号被钳制到下限", ptouch, SizeSmall, 6},
		{"大号被钳制到上限", ptouch, SizeLarge, 72},
		{"色带默认中号", ptouch, "", 12},
		{"色带 auto 退回中号", ptouch, SizeAuto, 12},
		{"定长标签默认缩放适配", dymo, "", 57},
		{"定长标签固定字号", dymo, SizeMedium, 12},
	}
	for _, tc := range cases {
		got, err := e.ResolveFontSize("HELLO", FontResource{}, tc.medium, tc.pref)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: 期望 %g，实际 %g", tc.name, tc.want, got)
		}
	}

	if _, err := e.ResolveFontSize("x", FontResource{}, ptouch, Size("XL")); !errors.Is(err, ErrUnknownSize) {
		t.Fatalf("未知字号应返回 ErrUnknownSize，实际 %v", err)
	}
}

func TestVariableWidthWithoutURL(t *testing.T) {
	e := newTestEngine(t)
	ptouch := mustMedium(t, "ptouch")
	for _, text := range []string{"A", "Flour", "Bin 3 spare parts"} {
		page, err := e.Layout(Request{Text: text, Medium: ptouch, Size: SizeMedium})
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		tw, _ := stubMeasurer{}.TextWidth(text, FontResource{}, 12)
		if page.Width != tw+10 {
			t.Fatalf("%q: 页宽应为 %g，实际 %g", text, tw+10, page.Width)
		}
		if page.QR != nil {
			t.Fatalf("%q: 无 URL 时不应有二维码", text)
		}
		if page.Text.X != 5 {
			t.Fatalf("%q: 色带文字应左对齐到 x=5，实际 %g", text, page.Text.X)
		}
	}
}

func TestVariableWidthReservesQR(t *testing.T) {
	e := newTestEngine(t)
	ptouch := mustMedium(t, "ptouch")

	page, err := e.Layout(Request{Text: "Shelf A1 https://ex.am/q", Medium: ptouch, Size: SizeMedium})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if page.Text.Content != "Shelf A1" {
		t.Fatalf("显示文本应去掉 URL，实际 %q", page.Text.Content)
	}
	tw, _ := stubMeasurer{}.TextWidth("Shelf A1", FontResource{}, 12)
	if want := tw + 10 + 40 + 10; page.Width != want {
		t.Fatalf("页宽应为 %g，实际 %g", want, page.Width)
	}
	if page.QR == nil {
		t.Fatalf("缺少二维码")
	}
	if page.QR.Data != "https://ex.am/q" {
		t.Fatalf("二维码数据错误: %q", page.QR.Data)
	}
	if page.QR.X != tw+10 || page.QR.Size != 40 {
		t.Fatalf("二维码位置错误: x=%g size=%g", page.QR.X, page.QR.Size)
	}
	if !approx(page.QR.Y, (ptouch.Height-40)/2) {
		t.Fatalf("二维码 y 错误: %g", page.QR.Y)
	}
	if page.QR.Image == nil {
		t.Fatalf("二维码缺少位图")
	}
	if page.Text.X != 5 || !approx(page.Text.Y, (ptouch.Height-12)/2) {
		t.Fatalf("文字位置错误: (%g, %g)", page.Text.X, page.Text.Y)
	}
}

func TestFixedSizeKeepsURLAsText(t *testing.T) {
	e := newTestEngine(t)
	page, err := e.Layout(Request{Text: "go https://ex.am", Medium: mustMedium(t, "dymo")})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if page.QR != nil || page.Text.Content != "go https://ex.am" {
		t.Fatalf("定长标签应原样输出文本，实际 %+v", page)
	}
}

func TestFixedSizeCentered(t *testing.T) {
	e := newTestEngine(t)
	page, err := e.Layout(Request{Text: "HELLO", Medium: mustMedium(t, "dymo")})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	// 5 个字符 × 0.5 × s <= 143 ⇒ s = 57
	want := Page{
		Medium: "dymo",
		Width:  153,
		Height: 72,
		Text: TextBox{
			Content:  "HELLO",
			X:        (153 - 142.5) / 2,
			Y:        (72 - 57) / 2.0,
			Width:    142.5,
			FontSize: 57,
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Fatalf("页面几何不符 (-want +got):\n%s", diff)
	}
}

func TestFixedSizeOverflowIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	page, err := e.Layout(Request{Text: strings.Repeat("X", 100), Medium: mustMedium(t, "dymo")})
	if err != nil {
		t.Fatalf("溢出不应报错: %v", err)
	}
	if !page.Overflow || page.Text.FontSize != 6 {
		t.Fatalf("期望以最小字号溢出，实际 overflow=%v size=%g", page.Overflow, page.Text.FontSize)
	}
	if page.Width != 153 || page.Height != 72 {
		t.Fatalf("定长页面尺寸不应变化: %gx%g", page.Width, page.Height)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	for _, req := range []Request{
		{Text: "HELLO", Medium: mustMedium(t, "dymo")},
		{Text: "Shelf A1 https://ex.am/q", Medium: mustMedium(t, "ptouch"), Size: SizeLarge},
	} {
		a, err := e.Layout(req)
		if err != nil {
			t.Fatalf("Layout error: %v", err)
		}
		b, err := e.Layout(req)
		if err != nil {
			t.Fatalf("Layout error: %v", err)
		}
		if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(QRBox{}, "Image")); diff != "" {
			t.Fatalf("同一请求两次排版结果不同:\n%s", diff)
		}
	}
}

func TestLayoutNormalizesText(t *testing.T) {
	e := newTestEngine(t)
	page, err := e.Layout(Request{Text: "Cafe\u0301", Medium: mustMedium(t, "ptouch")})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if page.Text.Content != "Caf\u00e9" {
		t.Fatalf("期望 NFC 形式，实际 %q", page.Text.Content)
	}
	if page.Text.Width != 4*12*0.5 {
		t.Fatalf("宽度应按 4 个字符计算，实际 %g", page.Text.Width)
	}
}

func TestLayoutRejectsEmptyText(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Layout(Request{Text: "   ", Medium: mustMedium(t, "dymo")}); !errors.Is(err, ErrNoText) {
		t.Fatalf("空文本应返回 ErrNoText，实际 %v", err)
	}
}

func TestQREncodingFailurePropagates(t *testing.T) {
	encErr := errors.New("data too long")
	e := newTestEngine(t, WithQREncoder(stubEncoder{err: encErr}))
	_, err := e.Layout(Request{Text: "x https://ex.am", Medium: mustMedium(t, "ptouch")})
	if !errors.Is(err, ErrQREncode) || !errors.Is(err, encErr) {
		t.Fatalf("编码失败应同时匹配 ErrQREncode 与原始错误，实际 %v", err)
	}

	noEnc, err := NewEngine(stubMeasurer{})
	if err != nil {
		t.Fatalf("创建引擎失败: %v", err)
	}
	if _, err := noEnc.Layout(Request{Text: "x https://ex.am", Medium: mustMedium(t, "ptouch")}); !errors.Is(err, ErrQREncode) {
		t.Fatalf("未配置编码器时不应静默丢弃二维码，实际 %v", err)
	}
}

func TestNewEngineValidatesOptions(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Fatalf("缺少 Measurer 应报错")
	}
	if _, err := NewEngine(stubMeasurer{}, WithFontRange(10, 8)); err == nil {
		t.Fatalf("字号范围颠倒应报错")
	}
	if _, err := NewEngine(stubMeasurer{}, WithPadding(0)); err == nil {
		t.Fatalf("零留白应报错")
	}
}

func TestWithSizesIsCopied(t *testing.T) {
	sizes := map[Size]float64{SizeSmall: 8, SizeMedium: 12, SizeLarge: 18}
	e := newTestEngine(t, WithSizes(sizes))
	sizes[SizeMedium] = 30
	got, err := e.ResolveFontSize("x", FontResource{}, mustMedium(t, "ptouch"), SizeMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("构造后修改字号表不应影响引擎，实际 %g", got)
	}
}

func TestDimensionsAndPosition(t *testing.T) {
	e := newTestEngine(t)
	dymo := mustMedium(t, "dymo")
	ptouch := mustMedium(t, "ptouch")

	cases := []struct {
		name         string
		medium       Medium
		withQR       bool
		wantW, wantH float64
		wantX        float64
	}{
		// "ABCD" 在 10pt 下宽 20pt
		{"定长标签与文本无关", dymo, false, 153, 72, (153 - 20) / 2.0},
		{"色带按文本计算", ptouch, false, 30, ptouch.Height, 5},
		{"色带预留二维码", ptouch, true, 80, ptouch.Height, 5},
	}
	for _, tc := range cases {
		w, h, err := e.Dimensions(tc.medium, "ABCD", FontResource{}, 10, tc.withQR)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("%s: 期望 %gx%g，实际 %gx%g", tc.name, tc.wantW, tc.wantH, w, h)
		}
		x, y, err := e.Position(tc.medium, "ABCD", FontResource{}, 10, w, h)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !approx(x, tc.wantX) || !approx(y, (h-10)/2) {
			t.Fatalf("%s: 文字起点错误 (%g, %g)", tc.name, x, y)
		}
	}
}

func TestQRGlyphOptions(t *testing.T) {
	e := newTestEngine(t, WithQRGeometry(30, 4), WithTextMargin(2))
	got := e.QRGlyph("https://ex.am", 50, 34)
	want := QRBox{Data: "https://ex.am", X: 54, Y: 2, Size: 30}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("二维码图块不符 (-want +got):\n%s", diff)
	}

	page, err := e.Layout(Request{Text: "AB https://ex.am", Medium: mustMedium(t, "ptouch"), Size: SizeMedium})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if page.Text.X != 2 {
		t.Fatalf("文字边距应为 2，实际 %g", page.Text.X)
	}
	if want := 12.0 + 10 + 30 + 4; page.Width != want {
		t.Fatalf("页宽应为 %g，实际 %g", want, page.Width)
	}
}
