package layout

// Build 依次排版一批标签，每个请求生成一页。
// 任一标签失败时立即停止：返回已经成功排版的部分结果以及 *LabelError，
// 调用方可以选择仍然输出这些页面。
func (e *Engine) Build(reqs []Request, meta DocumentMeta) (*Result, error) {
	res := &Result{Meta: meta}
	if len(reqs) == 0 {
		return res, ErrNoText
	}
	res.Pages = make([]Page, 0, len(reqs))
	for i, req := range reqs {
		page, err := e.Layout(req)
		if err != nil {
			return res, &LabelError{Index: i, Text: req.Text, Err: err}
		}
		res.Pages = append(res.Pages, page)
	}
	return res, nil
}
