package regionindex

import "strings"

// strategy：一种匹配策略，返回命中的条目下标
// 约束：raw 为调用方给出的原始名称，key 为其归一化键。
type strategy func(c *CityMemberIndex, raw, key string) (int, bool)

// 省级：精确键 → 归一化相等 → 双向子串
var provinceStrategies = []strategy{exactKey, normalizedEqual, eitherContains}

// 区级：归一化包含（含相等） → 原样键
var districtStrategies = []strategy{normalizedContains, exactKey}

// resolve：按顺序执行策略，返回第一个命中
// 多个键同时满足子串匹配时以数据源顺序中的第一个为准，不做进一步消歧。
func resolve(c *CityMemberIndex, raw, key string, strategies []strategy) (int, bool) {
	if c == nil || len(c.entries) == 0 {
		return 0, false
	}
	for _, s := range strategies {
		if i, ok := s(c, raw, key); ok {
			return i, true
		}
	}
	return 0, false
}

func exactKey(c *CityMemberIndex, raw, _ string) (int, bool) {
	i, ok := c.exact[raw]
	return i, ok
}

func normalizedEqual(c *CityMemberIndex, _, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i, e := range c.entries {
		if e.norm == key {
			return i, true
		}
	}
	return 0, false
}

func eitherContains(c *CityMemberIndex, _, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i, e := range c.entries {
		if e.norm == "" {
			continue
		}
		if strings.Contains(e.norm, key) || strings.Contains(key, e.norm) {
			return i, true
		}
	}
	return 0, false
}

func normalizedContains(c *CityMemberIndex, _, key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i, e := range c.entries {
		if strings.Contains(e.norm, key) {
			return i, true
		}
	}
	return 0, false
}
