package svgmap

// Fill：元素当前生效的填充色
func (d *Document) Fill(id ElementID) string {
	n, ok := d.Element(id)
	if !ok {
		return ""
	}
	return n.ComputedFill()
}

// InlineFill：仅内联 style 中的 fill，不考虑属性与继承
func (d *Document) InlineFill(id ElementID) string {
	n, ok := d.Element(id)
	if !ok {
		return ""
	}
	v, _ := n.StyleProp("fill")
	return v
}

// SetFill：只改写内联 style 的 fill，其它属性不动
func (d *Document) SetFill(id ElementID, fill string) {
	if n, ok := d.Element(id); ok {
		n.SetStyleProp("fill", fill)
	}
}

// SetCursor：只改写内联 style 的 cursor；空值恢复默认
func (d *Document) SetCursor(id ElementID, cursor string) {
	if n, ok := d.Element(id); ok {
		n.SetStyleProp("cursor", cursor)
	}
}
