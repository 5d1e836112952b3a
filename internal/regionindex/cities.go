package regionindex

import (
	"bytes"
	"encoding/json"
	"fmt"

	"saha-map/internal/normalize"
)

// Entry：数据源中的一个城市/区键及其会员
type Entry struct {
	Key     string
	Members []MemberRecord
	norm    string
}

// CityMemberIndex：原始城市/区名 → 会员列表，保持数据源中的键顺序
// 约束：构建后只读；刷新时整体替换，不做增量合并。
type CityMemberIndex struct {
	entries []Entry
	exact   map[string]int
}

// NewCityMemberIndex：按给定顺序构建索引；重复键保留首次出现的位置并合并会员
func NewCityMemberIndex(entries []Entry) *CityMemberIndex {
	c := &CityMemberIndex{exact: make(map[string]int, len(entries))}
	for _, e := range entries {
		if i, ok := c.exact[e.Key]; ok {
			c.entries[i].Members = append(c.entries[i].Members, e.Members...)
			continue
		}
		// 复制一份，合并重复键时不会写入调用方的底层数组
		e.Members = append([]MemberRecord(nil), e.Members...)
		e.norm = normalize.Key(e.Key)
		c.exact[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Len：键数量
func (c *CityMemberIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Total：会员总数
func (c *CityMemberIndex) Total() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, e := range c.entries {
		n += len(e.Members)
	}
	return n
}

// Keys：按数据源顺序返回原始键
func (c *CityMemberIndex) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Key
	}
	return out
}

// DecodeCityMembers：解码 {"城市": [{name, role}], ...}，保留对象键顺序
// 约束：值不是数组的键跳过；null 视为空索引。
func DecodeCityMembers(raw json.RawMessage) (*CityMemberIndex, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NewCityMemberIndex(nil), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode city members: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode city members: expected object, got %v", tok)
	}
	var entries []Entry
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode city members: %w", err)
		}
		key, _ := kt.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode city members %q: %w", key, err)
		}
		var members []MemberRecord
		if err := json.Unmarshal(v, &members); err != nil {
			continue
		}
		entries = append(entries, Entry{Key: key, Members: members})
	}
	return NewCityMemberIndex(entries), nil
}

// MarshalJSON：按原键顺序编码，供缓存回放后仍保持首个命中的确定性
func (c *CityMemberIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if c != nil {
		for i, e := range c.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			members := e.Members
			if members == nil {
				members = []MemberRecord{}
			}
			v, err := json.Marshal(members)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
