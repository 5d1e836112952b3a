// 地图资产预处理工具：清理导出的 SVG 并为区县组打上 data-district 标记
package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"saha-map/internal/geodata"
	"saha-map/internal/logger"
	"saha-map/internal/svgmap"
)

// 文档注释：离线处理地图文件
// 背景：设计工具导出的 SVG 带有多余命名空间、白色填充与背景块，直接使用无法悬停。
// 约束：SVG_PREP_MODE=district 时按 GeoJSON 要素顺序标记 patch_N 组；province 只做清理与改色。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	assetDir := os.Getenv("MAP_ASSET_DIR")
	if assetDir == "" {
		assetDir = filepath.Join("data", "maps")
	}
	mode := os.Getenv("SVG_PREP_MODE")
	if mode == "" {
		mode = "district"
	}
	file := svgmap.DistrictFile
	if mode == "province" {
		file = svgmap.ProvinceFile
	}
	in := os.Getenv("SVG_PREP_IN")
	if in == "" {
		in = filepath.Join(assetDir, "raw", file)
	}
	out := os.Getenv("SVG_PREP_OUT")
	if out == "" {
		out = filepath.Join(assetDir, file)
	}

	doc, err := svgmap.ParseFile(mode, in)
	if err != nil {
		l.Error("svg_prep_parse_error", "path", in, "err", err)
		os.Exit(1)
	}
	var rep svgmap.PrepReport
	switch mode {
	case "district":
		fc, err := geodata.LoadDistrictFeatures(assetDir)
		if err != nil {
			l.Error("svg_prep_geojson_error", "err", err)
			os.Exit(1)
		}
		rep = svgmap.Prepare(doc, geodata.Districts(fc))
	case "province":
		svgmap.StripForeignNamespaces(doc, &rep)
		svgmap.RecolorWhite(doc, &rep)
	default:
		l.Error("svg_prep_mode_invalid", "mode", mode)
		os.Exit(1)
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		l.Error("svg_prep_render_error", "err", err)
		os.Exit(1)
	}
	_ = os.MkdirAll(filepath.Dir(out), 0o755)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		l.Error("svg_prep_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	for _, name := range rep.Missing {
		l.Warn("svg_prep_district_missing", "district", name)
	}
	l.Info("svg_prep_done",
		"mode", mode,
		"out", out,
		"removed_attrs", rep.RemovedAttrs,
		"removed_metadata", rep.RemovedMetadata,
		"removed_nodes", rep.RemovedNodes,
		"recolored", rep.Recolored,
		"tagged", rep.Tagged,
	)
}
