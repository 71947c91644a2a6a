package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/labelgen/binding"
	"github.com/ByLCY/labelgen/dsl"
	"github.com/ByLCY/labelgen/layout"
	"github.com/ByLCY/labelgen/qrcode"
	"github.com/ByLCY/labelgen/renderer"
	canvasrenderer "github.com/ByLCY/labelgen/renderer/canvas"
)

// errUsage 表示命令行参数错误，与 layout 的输入类错误一样以状态码 2 退出。
var errUsage = errors.New("参数错误")

type options struct {
	medium    string
	texts     []string
	size      string
	output    string
	input     string
	data      string
	font      string
	qrEncoder string
	qrLevel   string
	debug     string
	verbose   bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("labelgen: ")

	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Printf("%v", err)
		os.Exit(2)
	}

	r := canvasrenderer.NewRenderer(filepath.Dir(opts.input))
	pages, err := run(opts, r)
	if pages > 0 {
		fmt.Printf("已生成 PDF（%d 页）：%s\n", pages, opts.output)
	}
	if err != nil {
		log.Printf("生成标签失败: %v", err)
		if isInputError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func isInputError(err error) bool {
	return errors.Is(err, errUsage) || layout.IsInputError(err)
}

// parseArgs 解析命令行。flag 包在第一个位置参数处停止，这里循环解析，
// 使 `labelgen ptouch "A" --size L` 与 `labelgen --size L ptouch "A"` 等价。
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("labelgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.size, "size", "", "字号：S、M、L 或 auto（定长标签默认 auto，色带默认 M）")
	fs.StringVar(&opts.output, "output", "labels.pdf", "PDF 输出路径")
	fs.StringVar(&opts.output, "out", "labels.pdf", "同 -output")
	fs.StringVar(&opts.input, "in", "", "批量标签文件路径（替代命令行中的介质与文本）")
	fs.StringVar(&opts.data, "data", "", "绑定到 ${...} 占位符的 JSON 数据")
	fs.StringVar(&opts.font, "font", "", "字体：go-regular、go-medium、go-bold、go-mono、go-mono-bold 或字体文件路径")
	fs.StringVar(&opts.qrEncoder, "qr-encoder", "skip2", "二维码编码器：skip2 或 boombuler")
	fs.StringVar(&opts.qrLevel, "qr-level", "M", "二维码纠错等级：L、M、Q 或 H")
	fs.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.BoolVar(&opts.verbose, "v", false, "输出排版诊断信息")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "用法: labelgen [选项] <介质> <文本>...\n       labelgen [选项] -in <批量文件>\n介质: %s\n", strings.Join(layout.MediumNames(), ", "))
		fs.PrintDefaults()
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if opts.output == "" {
		return nil, fmt.Errorf("%w: 输出路径不能为空", errUsage)
	}
	if opts.input != "" {
		if len(positional) > 0 {
			return nil, fmt.Errorf("%w: 使用 -in 时不能再给出介质与文本", errUsage)
		}
		return opts, nil
	}
	if len(positional) == 0 {
		return nil, fmt.Errorf("%w: 缺少介质", errUsage)
	}
	opts.medium = positional[0]
	opts.texts = positional[1:]
	if len(opts.texts) == 0 {
		return nil, layout.ErrNoText
	}
	return opts, nil
}

// run 串联请求构建、排版与渲染，返回写入文件的页数。
// 批量中某张标签失败时，之前成功排版的页面仍会写入文件，同时返回该错误。
func run(opts *options, r interface {
	renderer.Renderer
	layout.Measurer
}) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("renderer 不能为空")
	}
	var data any
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return 0, fmt.Errorf("%w: 解析 data JSON 失败: %v", errUsage, err)
		}
	}

	var logger *log.Logger
	if opts.verbose {
		logger = log.New(os.Stderr, "labelgen: ", 0)
	}

	reqs, meta, err := buildRequests(opts, data, logger)
	if err != nil {
		return 0, err
	}
	if meta.Creator == "" {
		meta.Creator = "labelgen"
	}

	level, err := qrcode.ParseLevel(opts.qrLevel)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	enc, err := qrcode.New(opts.qrEncoder, level)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}
	engine, err := layout.NewEngine(r, layout.WithQREncoder(enc), layout.WithLogger(logger))
	if err != nil {
		return 0, err
	}

	result, buildErr := engine.Build(reqs, meta)
	if isInputError(buildErr) {
		return 0, buildErr
	}

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return 0, errors.Join(buildErr, err)
		}
	}
	if len(result.Pages) == 0 {
		return 0, buildErr
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return 0, errors.Join(buildErr, fmt.Errorf("渲染 PDF 失败: %w", err))
	}
	if err := writeFile(opts.output, pdfBytes); err != nil {
		return 0, errors.Join(buildErr, err)
	}
	return len(result.Pages), buildErr
}

func buildRequests(opts *options, data any, logger *log.Logger) ([]layout.Request, layout.DocumentMeta, error) {
	size, err := layout.ParseSize(opts.size)
	if err != nil {
		return nil, layout.DocumentMeta{}, err
	}
	font := layout.ParseFont(opts.font)

	if opts.input != "" {
		doc, err := parseBatch(opts.input)
		if err != nil {
			return nil, layout.DocumentMeta{}, err
		}
		reqs, meta, missing, err := layout.FromDocument(doc, layout.BatchDefaults{Font: font, Size: size, Data: data})
		if err != nil {
			return nil, meta, err
		}
		warnMissing(logger, missing)
		return reqs, meta, nil
	}

	medium, err := layout.LookupMedium(opts.medium)
	if err != nil {
		return nil, layout.DocumentMeta{}, err
	}
	reqs := make([]layout.Request, 0, len(opts.texts))
	for _, text := range opts.texts {
		if strings.TrimSpace(text) == "" {
			return nil, layout.DocumentMeta{}, layout.ErrNoText
		}
		bound, missing := binding.Interpolate(text, data)
		warnMissing(logger, missing)
		reqs = append(reqs, layout.Request{Text: bound, Medium: medium, Size: size, Font: font})
	}
	return reqs, layout.DocumentMeta{}, nil
}

func parseBatch(path string) (*dsl.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 无法打开批量文件 %s: %v", errUsage, path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(path, file)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析批量文件失败: %v", errUsage, err)
	}
	return doc, nil
}

func warnMissing(logger *log.Logger, missing []string) {
	if logger == nil {
		return
	}
	for _, path := range missing {
		logger.Printf("占位符 ${%s} 没有对应数据，保留原样", path)
	}
}

func writeDebug(result *layout.Result, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	if err := layout.WriteDebugJSON(f, result); err != nil {
		f.Close()
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return f.Close()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
