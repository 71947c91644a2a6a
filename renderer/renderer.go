package renderer

import "github.com/ByLCY/labelgen/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 对每个 Page 输出一页，全部页面完成后只收尾一次，返回生成的二进制数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
