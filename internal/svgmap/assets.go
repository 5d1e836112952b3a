package svgmap

import (
	"fmt"
	"path/filepath"
)

// 资产目录中的两张地图
const (
	ProvinceFile = "turkiye.svg"
	DistrictFile = "istanbul.svg"
)

// Assets：已解析的母版地图，只读；会话使用 Clone 后的副本
type Assets struct {
	Province *Document
	District *Document
}

// LoadAssets：从目录读取省级与区级地图
func LoadAssets(dir string) (Assets, error) {
	prov, err := ParseFile("province", filepath.Join(dir, ProvinceFile))
	if err != nil {
		return Assets{}, fmt.Errorf("load province map: %w", err)
	}
	dist, err := ParseFile("district", filepath.Join(dir, DistrictFile))
	if err != nil {
		return Assets{}, fmt.Errorf("load district map: %w", err)
	}
	return Assets{Province: prov, District: dist}, nil
}
