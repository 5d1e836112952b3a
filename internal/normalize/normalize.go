// 包 normalize：地区名称归一化，把编码混乱的省/区名称规约为只用于比较的 ASCII 键
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 文档注释：UTF-8 被当作 Latin-1/CP1252 解读后的典型乱码对照表
// 约束：按表顺序替换，同一位置多条命中时取靠前的一条；顺序属于契约，不可随意调整。
var misEncoded = []string{
	"Ã‡", "Ç",
	"Ã\u0087", "Ç",
	"Ã§", "ç",
	"Äž", "Ğ",
	"Ä\u009e", "Ğ",
	"ÄŸ", "ğ",
	"Ä\u009f", "ğ",
	"Ä°", "İ",
	"Ä±", "ı",
	"Ã–", "Ö",
	"Ã\u0096", "Ö",
	"Ã¶", "ö",
	"Åž", "Ş",
	"Å\u009e", "Ş",
	"ÅŸ", "ş",
	"Å\u009f", "ş",
	"Ãœ", "Ü",
	"Ã\u009c", "Ü",
	"Ã¼", "ü",
	"Ã¢", "â",
	"Ã¡", "á",
}

var mojibake = strings.NewReplacer(misEncoded...)

// 土耳其语大写 I 的两种形态需先于小写化处理，避免 I 与 İ 同时折叠为 i
var turkishUpper = strings.NewReplacer("İ", "i", "I", "ı")

var letters = strings.NewReplacer(
	"ç", "c",
	"ğ", "g",
	"ı", "i",
	"ö", "o",
	"ş", "s",
	"ü", "u",
	"â", "a",
	"á", "a",
)

// Key：返回归一化比较键
// 约束：结果只含 [a-z0-9]；空输入返回空串；幂等，Key(Key(s)) == Key(s)。
func Key(raw string) string {
	if raw == "" {
		return ""
	}
	s := Fix(raw)
	s = turkishUpper.Replace(s)
	// cases.Caser 有状态，不可跨 goroutine 复用
	s = cases.Lower(language.Turkish).String(s)
	s = letters.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Fix：只做转义解码与乱码修复，保留大小写与变音符号，用于展示名称
func Fix(raw string) string {
	if raw == "" {
		return ""
	}
	return mojibake.Replace(decodeEscapes(raw))
}

// Matches：两个名称归一化后是否相等；任一方为空时不相等
func Matches(a, b string) bool {
	ka, kb := Key(a), Key(b)
	return ka != "" && ka == kb
}

// decodeEscapes：解码 \xHH 与 \uHHHH 形式的转义；非法转义原样保留
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			width := 0
			switch s[i+1] {
			case 'x':
				width = 2
			case 'u':
				width = 4
			}
			if width > 0 && i+2+width <= len(s) {
				if r, ok := parseHex(s[i+2 : i+2+width]); ok {
					b.WriteRune(r)
					i += 2 + width
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func parseHex(h string) (rune, bool) {
	var r rune
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}
