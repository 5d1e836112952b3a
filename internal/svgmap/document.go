// 包 svgmap：SVG 地图文档模型，负责解析、渲染与按元素修改填充色/光标
package svgmap

import "strings"

// ElementID：元素在文档中的先序下标（根元素为 0）
// 浏览器端以 [svg, ...svg.querySelectorAll('*')] 的顺序计算同一下标。
type ElementID int

// NodeKind：节点类型
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Attr：保留前缀的属性（如 xlink:href）
type Attr struct {
	Name  string
	Value string
}

// Node：文档节点；非元素节点只使用 Data
type Node struct {
	Kind     NodeKind
	ID       ElementID
	Name     string
	Attrs    []Attr
	Data     string
	Children []*Node
	Parent   *Node
}

// Attr：读取属性值
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr：设置属性，不存在时追加
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr：删除属性
func (n *Node) RemoveAttr(name string) {
	out := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Name != name {
			out = append(out, a)
		}
	}
	n.Attrs = out
}

// IsLeafPath：是否为没有子元素的 path 元素
func (n *Node) IsLeafPath() bool {
	if n == nil || n.Kind != ElementNode || localName(n.Name) != "path" {
		return false
	}
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			return false
		}
	}
	return true
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Document：已解析的 SVG 文档
// 约束：结构性修改（删除节点等）后必须调用 Reindex，ElementID 才与浏览器端一致。
type Document struct {
	Name  string
	Nodes []*Node
	root  *Node
	elems []*Node
}

// Root：根元素
func (d *Document) Root() *Node { return d.root }

// Element：按下标取元素
func (d *Document) Element(id ElementID) (*Node, bool) {
	if id < 0 || int(id) >= len(d.elems) {
		return nil, false
	}
	return d.elems[id], true
}

// Len：元素数量
func (d *Document) Len() int { return len(d.elems) }

// Reindex：重新计算先序下标
func (d *Document) Reindex() {
	d.elems = d.elems[:0]
	d.root = nil
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind != ElementNode {
			return
		}
		n.ID = ElementID(len(d.elems))
		d.elems = append(d.elems, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range d.Nodes {
		if n.Kind == ElementNode && d.root == nil {
			d.root = n
			walk(n)
		}
	}
}

// Find：先序返回满足条件的元素
func (d *Document) Find(pred func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range d.elems {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// LeafPaths：n 自身或其子树中的全部叶子 path
func LeafPaths(n *Node) []*Node {
	var out []*Node
	var walk func(x *Node)
	walk = func(x *Node) {
		if x.Kind != ElementNode {
			return
		}
		if x.IsLeafPath() {
			out = append(out, x)
			return
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Closest：自身起向上查找第一个满足条件的元素
func Closest(n *Node, pred func(*Node) bool) *Node {
	for x := n; x != nil; x = x.Parent {
		if x.Kind == ElementNode && pred(x) {
			return x
		}
	}
	return nil
}

// Clone：深拷贝文档，供每个会话独立着色
func (d *Document) Clone() *Document {
	c := &Document{Name: d.Name}
	for _, n := range d.Nodes {
		c.Nodes = append(c.Nodes, cloneNode(n, nil))
	}
	c.Reindex()
	return c
}

func cloneNode(n *Node, parent *Node) *Node {
	c := &Node{Kind: n.Kind, Name: n.Name, Data: n.Data, Parent: parent}
	if len(n.Attrs) > 0 {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, ch := range n.Children {
		c.Children = append(c.Children, cloneNode(ch, c))
	}
	return c
}

// Remove：从父节点摘除；调用方负责 Reindex
func (d *Document) Remove(n *Node) {
	if n.Parent == nil {
		out := d.Nodes[:0]
		for _, x := range d.Nodes {
			if x != n {
				out = append(out, x)
			}
		}
		d.Nodes = out
		return
	}
	p := n.Parent
	out := p.Children[:0]
	for _, x := range p.Children {
		if x != n {
			out = append(out, x)
		}
	}
	p.Children = out
	n.Parent = nil
}

func (d *Document) attached(n *Node) bool {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	for _, x := range d.Nodes {
		if x == top {
			return true
		}
	}
	return false
}
