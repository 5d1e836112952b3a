package svgmap

import (
	"fmt"
	"strings"

	"saha-map/internal/geodata"
	"saha-map/internal/normalize"
)

const (
	// VisibleFill：白色区块替换成的浅灰，保证可见且可悬停
	VisibleFill = "#d3d3d3"
	whiteFill   = "#ffffff"
	// 前两个 patch 组是背景矩形，区县从 patch_3 开始
	firstDistrictPatch = 3
)

var (
	foreignNamespaces = map[string]bool{"xmlns:xlink": true, "xmlns:dc": true, "xmlns:cc": true, "xmlns:rdf": true}
	backgroundGroups  = map[string]bool{"patch_1": true, "patch_2": true}
	backgroundFills   = map[string]bool{"#212830": true, "#000000": true}
)

// PrepReport：资产预处理统计
type PrepReport struct {
	RemovedAttrs    int
	RemovedMetadata int
	Recolored       int
	RemovedNodes    int
	Tagged          int
	Missing         []string
}

// StripForeignNamespaces：去掉多余命名空间声明、metadata 与 xml:* 属性，xlink:href 改写为 href
func StripForeignNamespaces(doc *Document, rep *PrepReport) {
	for _, n := range doc.Find(func(*Node) bool { return true }) {
		out := n.Attrs[:0]
		for _, a := range n.Attrs {
			switch {
			case foreignNamespaces[a.Name], strings.HasPrefix(a.Name, "xml:"):
				rep.RemovedAttrs++
				continue
			case a.Name == "xlink:href":
				a.Name = "href"
			}
			out = append(out, a)
		}
		n.Attrs = out
	}
	for _, n := range doc.Find(func(n *Node) bool { return localName(n.Name) == "metadata" }) {
		doc.Remove(n)
		rep.RemovedMetadata++
	}
	doc.Reindex()
}

// RecolorWhite：把 style 或属性中的白色填充改为 VisibleFill
func RecolorWhite(doc *Document, rep *PrepReport) {
	for _, n := range doc.Find(func(*Node) bool { return true }) {
		if v, ok := n.StyleProp("fill"); ok && strings.EqualFold(v, whiteFill) {
			n.SetStyleProp("fill", VisibleFill)
			rep.Recolored++
		}
		if v, ok := n.Attr("fill"); ok && strings.EqualFold(v, whiteFill) {
			n.SetAttr("fill", VisibleFill)
			rep.Recolored++
		}
	}
}

// RemoveBackground：删除背景 patch 组以及深色填充的独立 path
func RemoveBackground(doc *Document, rep *PrepReport) {
	doomed := doc.Find(func(n *Node) bool {
		if id, _ := n.Attr("id"); localName(n.Name) == "g" && backgroundGroups[id] {
			return true
		}
		if localName(n.Name) != "path" {
			return false
		}
		fill, _ := n.StyleProp("fill")
		return backgroundFills[strings.ToLower(fill)]
	})
	for _, n := range doomed {
		if !doc.attached(n) {
			continue
		}
		doc.Remove(n)
		rep.RemovedNodes++
	}
	doc.Reindex()
}

// TagDistricts：按要素集合顺序给 patch_N 组加 data-district 与规范化 id
// 组内第一个 path 获得 "path"+名称（去空格）作为 id。
func TagDistricts(doc *Document, names []string, rep *PrepReport) {
	groups := map[string]*Node{}
	for _, n := range doc.Find(func(n *Node) bool { return localName(n.Name) == "g" }) {
		if id, ok := n.Attr("id"); ok {
			if _, seen := groups[id]; !seen {
				groups[id] = n
			}
		}
	}
	for i, name := range names {
		patch := fmt.Sprintf("patch_%d", i+firstDistrictPatch)
		g, ok := groups[patch]
		if !ok {
			rep.Missing = append(rep.Missing, name)
			continue
		}
		g.SetAttr("id", normalize.Key(name))
		g.SetAttr(geodata.AttrDistrict, name)
		if paths := LeafPaths(g); len(paths) > 0 {
			paths[0].SetAttr("id", "path"+strings.ReplaceAll(name, " ", ""))
		}
		rep.Tagged++
	}
}

// Prepare：完整的区县地图预处理流程
func Prepare(doc *Document, districts []geodata.District) PrepReport {
	var rep PrepReport
	names := make([]string, 0, len(districts))
	for _, d := range districts {
		names = append(names, d.Name)
	}
	StripForeignNamespaces(doc, &rep)
	TagDistricts(doc, names, &rep)
	RemoveBackground(doc, &rep)
	RecolorWhite(doc, &rep)
	return rep
}
