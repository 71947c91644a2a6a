package layout

import (
	"encoding/json"
	"io"
)

// debugPage 在 Page 之外附带页码，方便对照 PDF 查看。
type debugPage struct {
	Number int `json:"number"`
	Page
}

// WriteDebugJSON 将布局结果按页输出为 JSON，便于核对每页几何信息。
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	out := struct {
		Meta  DocumentMeta `json:"meta"`
		Pages []debugPage  `json:"pages"`
	}{Meta: res.Meta, Pages: make([]debugPage, len(res.Pages))}
	for i, p := range res.Pages {
		out.Pages[i] = debugPage{Number: i + 1, Page: p}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
