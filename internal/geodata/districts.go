package geodata

import (
	"strings"

	"saha-map/internal/normalize"
)

// IstanbulDistricts：伊斯坦布尔 39 个区；后端按区而非按市索引伊斯坦布尔会员
var IstanbulDistricts = []string{
	"Adalar", "Arnavutköy", "Ataşehir", "Avcılar", "Bağcılar",
	"Bahçelievler", "Bakırköy", "Başakşehir", "Bayrampaşa", "Beşiktaş",
	"Beykoz", "Beylikdüzü", "Beyoğlu", "Büyükçekmece", "Çatalca",
	"Çekmeköy", "Esenler", "Esenyurt", "Eyüpsultan", "Fatih",
	"Gaziosmanpaşa", "Güngören", "Kadıköy", "Kağıthane", "Kartal",
	"Küçükçekmece", "Maltepe", "Pendik", "Sancaktepe", "Sarıyer",
	"Silivri", "Sultanbeyli", "Sultangazi", "Şile", "Şişli",
	"Tuzla", "Ümraniye", "Üsküdar", "Zeytinburnu",
}

var istanbulDistrictKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(IstanbulDistricts))
	for _, d := range IstanbulDistricts {
		m[normalize.Key(d)] = struct{}{}
	}
	return m
}()

// IsIstanbulDistrictKey：归一化键是否属于伊斯坦布尔区列表
func IsIstanbulDistrictKey(key string) bool {
	_, ok := istanbulDistrictKeys[key]
	return ok
}

// IsIstanbul：按车牌代码或归一化名称判定是否伊斯坦布尔
func IsIstanbul(code, key string) bool {
	if code == IstanbulCode {
		return true
	}
	return key != "" && strings.Contains(key, "istanbul")
}
