package layout

import (
	"errors"
	"fmt"
)

// 输入类错误：调用方应直接报告并以非零状态退出，不生成文件。
var (
	ErrNoText        = errors.New("layout: 未提供标签文本")
	ErrUnknownMedium = errors.New("layout: 未知的标签介质")
	ErrUnknownSize   = errors.New("layout: 未知的字号")
)

// ErrQREncode 表示二维码编码失败（例如数据超出纠错等级的容量）。
var ErrQREncode = errors.New("layout: 二维码编码失败")

// IsInputError 判断 err 是否属于输入类错误。
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoText) || errors.Is(err, ErrUnknownMedium) || errors.Is(err, ErrUnknownSize)
}

// LabelError 标识批量中失败的那张标签。
type LabelError struct {
	Index int    // 从 0 开始
	Text  string // 原始文本
	Err   error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("第 %d 张标签 %q: %v", e.Index+1, e.Text, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }
