package geodata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"saha-map/internal/normalize"
)

// DistrictFile：区要素集文件名（资源目录内）
const DistrictFile = "istanbul-district.json"

//go:embed istanbul-district.json
var embeddedDistricts []byte

// District：区要素的最小投影（名称与代表点）
type District struct {
	Name   string
	Key    string
	Center orb.Point
}

// LoadDistrictFeatures：读取伊斯坦布尔区要素集
// 约束：dir 下存在 istanbul-district.json 时优先使用，否则回退到内置副本。
func LoadDistrictFeatures(dir string) (*geojson.FeatureCollection, error) {
	raw := embeddedDistricts
	if dir != "" {
		if b, err := os.ReadFile(filepath.Join(dir, DistrictFile)); err == nil {
			raw = b
		}
	}
	return ParseDistrictFeatures(raw)
}

// ParseDistrictFeatures：解析 GeoJSON FeatureCollection
func ParseDistrictFeatures(raw []byte) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	if err := json.Unmarshal(raw, fc); err != nil {
		return nil, fmt.Errorf("parse district features: %w", err)
	}
	return fc, nil
}

// Districts：按要素顺序投影出区名与代表点；无名称的要素跳过
func Districts(fc *geojson.FeatureCollection) []District {
	if fc == nil {
		return nil
	}
	out := make([]District, 0, len(fc.Features))
	for _, f := range fc.Features {
		name := featureName(f)
		if name == "" {
			continue
		}
		d := District{Name: name, Key: normalize.Key(name)}
		if f.Geometry != nil {
			d.Center = f.Geometry.Bound().Center()
		}
		out = append(out, d)
	}
	return out
}

func featureName(f *geojson.Feature) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	if v, ok := f.Properties["name"].(string); ok {
		return strings.TrimSpace(normalize.Fix(v))
	}
	return ""
}
