package fonts

import "errors"

// 字体相关的错误类别，调用方使用 errors.Is 判断。
var (
	// ErrFontLoad 表示字体数据缺失、无法读取或格式错误。
	ErrFontLoad = errors.New("font load failure")
	// ErrInvalidStyleReference 表示引用了未注册的字体族或字形变体。
	ErrInvalidStyleReference = errors.New("invalid style reference")
	// ErrUnsupportedEncoding 表示文本中包含当前字体无法表示的字符。
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)
