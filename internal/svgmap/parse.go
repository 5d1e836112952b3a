package svgmap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoRoot：文档中没有根元素
var ErrNoRoot = errors.New("svg document has no root element")

// Parse：解析 SVG 文本
// 背景：使用 RawToken 保留命名空间前缀，渲染结果与原资产一致。
func Parse(name string, r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	doc := &Document{Name: name}
	var stack []*Node
	appendNode := func(n *Node) {
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, n)
			return
		}
		p := stack[len(stack)-1]
		n.Parent = p
		p.Children = append(p.Children, n)
	}
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: ElementNode, Name: qualified(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			appendNode(n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			appendNode(&Node{Kind: TextNode, Data: string(t)})
		case xml.Comment:
			appendNode(&Node{Kind: CommentNode, Data: string(t)})
		case xml.ProcInst:
			appendNode(&Node{Kind: ProcInstNode, Name: t.Target, Data: string(t.Inst)})
		case xml.Directive:
			appendNode(&Node{Kind: DirectiveNode, Data: string(t)})
		}
	}
	doc.Reindex()
	if doc.root == nil {
		return nil, fmt.Errorf("parse %s: %w", name, ErrNoRoot)
	}
	return doc, nil
}

// ParseFile：从磁盘读取并解析
func ParseFile(name, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(name, f)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Render：序列化为 SVG 文本
func (d *Document) Render(w io.Writer) error {
	bw := &errWriter{w: w}
	for i, n := range d.Nodes {
		if i > 0 && n.Kind != TextNode {
			bw.str("\n")
		}
		renderNode(bw, n)
	}
	return bw.err
}

// Bytes：Render 的便捷形式
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.Bytes()
}

func renderNode(w *errWriter, n *Node) {
	switch n.Kind {
	case TextNode:
		w.escape(n.Data)
	case CommentNode:
		w.str("<!--" + n.Data + "-->")
	case ProcInstNode:
		if n.Data == "" {
			w.str("<?" + n.Name + "?>")
		} else {
			w.str("<?" + n.Name + " " + n.Data + "?>")
		}
	case DirectiveNode:
		w.str("<!" + n.Data + ">")
	case ElementNode:
		w.str("<" + n.Name)
		for _, a := range n.Attrs {
			w.str(" " + a.Name + "=\"")
			w.escape(a.Value)
			w.str("\"")
		}
		if len(n.Children) == 0 {
			w.str("/>")
			return
		}
		w.str(">")
		for _, c := range n.Children {
			renderNode(w, c)
		}
		w.str("</" + n.Name + ">")
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) str(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) escape(s string) {
	if e.err != nil {
		return
	}
	e.err = xml.EscapeText(e.w, []byte(s))
}
