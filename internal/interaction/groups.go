package interaction

import (
	"saha-map/internal/mapview"
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

// groupTable：文档内 地区键 → 叶子路径 的展开表，按文档惰性构建一次
type groupTable struct {
	byKey map[string][]svgmap.ElementID
}

func (g *groupTable) elements(key string, fallback svgmap.ElementID) []svgmap.ElementID {
	if ids := g.byKey[key]; len(ids) > 0 {
		return ids
	}
	return []svgmap.ElementID{fallback}
}

func (c *Controller) table(doc *svgmap.Document, level mapview.Level, idx *regionindex.Index) *groupTable {
	if g, ok := c.groups[doc]; ok {
		return g
	}
	g := &groupTable{byKey: map[string][]svgmap.ElementID{}}
	for _, n := range svgmap.LeafPaths(doc.Root()) {
		var (
			r  regionindex.Region
			ok bool
		)
		if level == mapview.LevelProvince {
			r, ok = provinceOf(n)
		} else {
			r, ok = districtOf(idx, n)
		}
		if ok {
			g.byKey[r.Key] = append(g.byKey[r.Key], n.ID)
		}
	}
	c.groups[doc] = g
	return g
}
