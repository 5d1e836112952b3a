// 包 geodata：静态地理参考数据（81 省车牌代码表、伊斯坦布尔区列表、多路径区域分组表、区边界要素集）
package geodata

import (
	"sort"

	"saha-map/internal/normalize"
)

// IstanbulCode：伊斯坦布尔的车牌代码，选中该省时切换到区级地图
const IstanbulCode = "34"

// Province：省级参考表项
type Province struct {
	Code string
	Name string
}

// Provinces：车牌代码 → 省名（权威来源，不从后端拉取）
var Provinces = map[string]string{
	"01": "Adana", "02": "Adıyaman", "03": "Afyonkarahisar", "04": "Ağrı", "05": "Amasya",
	"06": "Ankara", "07": "Antalya", "08": "Artvin", "09": "Aydın", "10": "Balıkesir",
	"11": "Bilecik", "12": "Bingöl", "13": "Bitlis", "14": "Bolu", "15": "Burdur",
	"16": "Bursa", "17": "Çanakkale", "18": "Çankırı", "19": "Çorum", "20": "Denizli",
	"21": "Diyarbakır", "22": "Edirne", "23": "Elazığ", "24": "Erzincan", "25": "Erzurum",
	"26": "Eskişehir", "27": "Gaziantep", "28": "Giresun", "29": "Gümüşhane", "30": "Hakkari",
	"31": "Hatay", "32": "Isparta", "33": "Mersin", "34": "İstanbul", "35": "İzmir",
	"36": "Kars", "37": "Kastamonu", "38": "Kayseri", "39": "Kırklareli", "40": "Kırşehir",
	"41": "Kocaeli", "42": "Konya", "43": "Kütahya", "44": "Malatya", "45": "Manisa",
	"46": "Kahramanmaraş", "47": "Mardin", "48": "Muğla", "49": "Muş", "50": "Nevşehir",
	"51": "Niğde", "52": "Ordu", "53": "Rize", "54": "Sakarya", "55": "Samsun",
	"56": "Siirt", "57": "Sinop", "58": "Sivas", "59": "Tekirdağ", "60": "Tokat",
	"61": "Trabzon", "62": "Tunceli", "63": "Şanlıurfa", "64": "Uşak", "65": "Van",
	"66": "Yozgat", "67": "Zonguldak", "68": "Aksaray", "69": "Bayburt", "70": "Karaman",
	"71": "Kırıkkale", "72": "Batman", "73": "Şırnak", "74": "Bartın", "75": "Ardahan",
	"76": "Iğdır", "77": "Yalova", "78": "Karabük", "79": "Kilis", "80": "Osmaniye",
	"81": "Düzce",
}

// 归一化省名 → 车牌代码，用于缺少代码时按名称回查
var provinceByKey = func() map[string]string {
	m := make(map[string]string, len(Provinces))
	for code, name := range Provinces {
		m[normalize.Key(name)] = code
	}
	return m
}()

// ProvinceByCode：按车牌代码查省；接受 "6" 与 "06" 两种写法
func ProvinceByCode(code string) (Province, bool) {
	if len(code) == 1 {
		code = "0" + code
	}
	name, ok := Provinces[code]
	if !ok {
		return Province{}, false
	}
	return Province{Code: code, Name: name}, true
}

// ProvinceByName：按名称归一化后精确查省
func ProvinceByName(raw string) (Province, bool) {
	k := normalize.Key(raw)
	if k == "" {
		return Province{}, false
	}
	code, ok := provinceByKey[k]
	if !ok {
		return Province{}, false
	}
	return Province{Code: code, Name: Provinces[code]}, true
}

// SortedProvinces：按车牌代码升序返回全部省
func SortedProvinces() []Province {
	out := make([]Province, 0, len(Provinces))
	for code, name := range Provinces {
		out = append(out, Province{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
