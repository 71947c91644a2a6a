package layout

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// ExtractURL 找出文本中第一个 http(s) URL，返回去掉该 URL 并修剪空白后的文本。
// 未找到时原样返回文本，ok 为 false。
func ExtractURL(text string) (display, url string, ok bool) {
	loc := urlPattern.FindStringIndex(text)
	if loc == nil {
		return text, "", false
	}
	url = text[loc[0]:loc[1]]
	display = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return display, url, true
}
