package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/labelgen/binding"
	"github.com/ByLCY/labelgen/dsl"
)

// BatchDefaults 为批量文件中未写明的设置提供默认值。
type BatchDefaults struct {
	Font FontResource
	Size Size // 为空时按介质取默认值
	Data any  // 绑定到 ${...} 占位符的数据
}

// FromDocument 将批量文件 AST 转换为标签请求，同时收集文档元信息。
// 未解析的占位符原样保留，路径在 missing 中返回。
func FromDocument(doc *dsl.Document, defaults BatchDefaults) (reqs []Request, meta DocumentMeta, missing []string, err error) {
	if doc == nil {
		return nil, meta, nil, fmt.Errorf("文档为空")
	}
	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			if err := applyMeta(&meta, section.Meta.Block); err != nil {
				return nil, meta, nil, err
			}
		case section.Media != nil:
			group, err := mediaRequests(section.Media, defaults)
			if err != nil {
				return nil, meta, nil, err
			}
			for _, req := range group {
				text, miss := binding.Interpolate(req.Text, defaults.Data)
				req.Text = text
				missing = append(missing, miss...)
				reqs = append(reqs, req)
			}
		}
	}
	if len(reqs) == 0 {
		return nil, meta, missing, ErrNoText
	}
	return reqs, meta, missing, nil
}

func applyMeta(meta *DocumentMeta, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, st := range block.Statements {
		if st.Assignment == nil {
			continue
		}
		val := st.Assignment.Value.Raw()
		switch strings.ToLower(st.Assignment.Key) {
		case "title":
			meta.Title = val
		case "author":
			meta.Author = val
		case "subject":
			meta.Subject = val
		case "creator":
			meta.Creator = val
		case "keywords":
			for _, kw := range strings.Split(val, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		default:
			return fmt.Errorf("meta 不支持字段 %q", st.Assignment.Key)
		}
	}
	return nil
}

// mediaRequests 解析 `media <name> [width L] [height L] [size S] [font F] { ... }`。
// 块内的 size:/font: 赋值覆盖头部参数。
func mediaRequests(sec *dsl.MediaSection, defaults BatchDefaults) ([]Request, error) {
	pairs, err := sec.Pairs()
	if err != nil {
		return nil, err
	}
	settings := map[string]string{}
	for _, kv := range pairs {
		settings[strings.ToLower(kv[0])] = kv[1]
	}
	var texts []string
	if sec.Block != nil {
		for _, st := range sec.Block.Statements {
			switch {
			case st.Assignment != nil:
				settings[strings.ToLower(st.Assignment.Key)] = st.Assignment.Value.Raw()
			case st.Text != nil:
				texts = append(texts, string(st.Text.Value))
			}
		}
	}

	medium, err := resolveMedium(sec.Name, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sec.Pos, err)
	}
	size := defaults.Size
	if v, ok := settings["size"]; ok {
		if size, err = ParseSize(v); err != nil {
			return nil, fmt.Errorf("%s: %w", sec.Pos, err)
		}
	}
	font := defaults.Font
	if v, ok := settings["font"]; ok {
		font = ParseFont(v)
	}
	for key := range settings {
		switch key {
		case "width", "height", "size", "font":
		default:
			return nil, fmt.Errorf("%s: media 不支持参数 %q", sec.Pos, key)
		}
	}

	reqs := make([]Request, 0, len(texts))
	for _, text := range texts {
		reqs = append(reqs, Request{Text: text, Medium: medium, Size: size, Font: font})
	}
	return reqs, nil
}

// resolveMedium 优先使用内置介质，width/height 可覆盖其尺寸；
// 非内置名称必须给出 height，只给 height 时得到 VariableWidth 介质。
func resolveMedium(name string, settings map[string]string) (Medium, error) {
	var width, height Length
	for key, dst := range map[string]*Length{"width": &width, "height": &height} {
		v, ok := settings[key]
		if !ok {
			continue
		}
		l, err := ParseLength(v)
		if err != nil {
			return Medium{}, fmt.Errorf("%w: %s %q 无法解析", ErrUnknownMedium, key, v)
		}
		*dst = l
	}

	m, err := LookupMedium(name)
	if err != nil {
		if height.IsZero() {
			return Medium{}, err
		}
		return CustomMedium(name, width, height)
	}
	if !height.IsZero() {
		m.Height = height.ToPT()
	}
	if !width.IsZero() {
		if m.Kind == VariableWidth {
			return Medium{}, fmt.Errorf("%w: 色带介质 %s 的宽度由内容决定，不能设置 width", ErrUnknownMedium, name)
		}
		m.Width = width.ToPT()
	}
	return m, validateMedium(m)
}
