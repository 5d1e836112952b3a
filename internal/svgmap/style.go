package svgmap

import "strings"

type declaration struct {
	prop  string
	value string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out = append(out, declaration{prop: k, value: strings.TrimSpace(v)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+":"+d.value)
	}
	return strings.Join(parts, ";")
}

// StyleProp：读取内联 style 中的属性
func (n *Node) StyleProp(prop string) (string, bool) {
	s, ok := n.Attr("style")
	if !ok {
		return "", false
	}
	for _, d := range parseStyle(s) {
		if d.prop == prop {
			return d.value, true
		}
	}
	return "", false
}

// SetStyleProp：修改内联 style；value 为空时删除该属性，其余声明保持顺序
func (n *Node) SetStyleProp(prop, value string) {
	s, _ := n.Attr("style")
	decls := parseStyle(s)
	out := decls[:0]
	found := false
	for _, d := range decls {
		if d.prop == prop {
			if value == "" {
				continue
			}
			d.value = value
			found = true
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, declaration{prop: prop, value: value})
	}
	if len(out) == 0 {
		n.RemoveAttr("style")
		return
	}
	n.SetAttr("style", formatStyle(out))
}

// ComputedFill：内联 style 优先，其次 fill 属性，最后沿祖先继承
func (n *Node) ComputedFill() string {
	for x := n; x != nil; x = x.Parent {
		if x.Kind != ElementNode {
			continue
		}
		if v, ok := x.StyleProp("fill"); ok && v != "" {
			return v
		}
		if v, ok := x.Attr("fill"); ok && v != "" {
			return v
		}
	}
	return ""
}
