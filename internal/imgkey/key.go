package imgkey

import (
	"errors"
	"regexp"
)

// ErrInvalidKey 表示外部传入的资源编码不合法。
var ErrInvalidKey = errors.New("invalid image key")

// keyPattern 只接受恰好三位十进制数字，不做 trim、不做大小写折叠。
var keyPattern = regexp.MustCompile(`^[0-9]{3}$`)

// Key 是校验通过后的三位编码。只有 Parse 能构造合法 Key，
// 因此由 Key 派生的文件名不可能逃逸出缓存根目录。
type Key string

// Parse 校验原始路径片段并返回 Key。任何不是恰好三位数字的输入
// 都会返回 ErrInvalidKey，包括带空白或带路径分隔符的变体。
func Parse(raw string) (Key, error) {
	if !keyPattern.MatchString(raw) {
		return "", ErrInvalidKey
	}
	return Key(raw), nil
}

// Filename 返回该 Key 在缓存根目录下对应的文件名，如 200 → 200.jpg。
// 映射是确定且单射的：每个 Key 恰好对应一个文件。
func (k Key) Filename() string {
	return string(k) + ".jpg"
}

// String 输出原始编码，便于日志字段复用。
func (k Key) String() string {
	return string(k)
}
