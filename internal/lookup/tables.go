package lookup

import (
	"github.com/packagewjx/flight-feature-prep/pkg/core"
	"math"
	"sort"
)

// Table 类别值到历史平均延误（分钟）的只读映射
type Table struct {
	name   string
	values map[string]float64
}

// New 复制values构造Table，之后对values的修改不影响Table
func New(name string, values map[string]float64) *Table {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Table{name: name, values: copied}
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Len() int {
	return len(t.values)
}

func (t *Table) Get(key string) (float64, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Substitute 返回key对应的值，key不存在时返回NaN
func (t *Table) Substitute(key string) float64 {
	if v, ok := t.values[key]; ok {
		return v
	}
	return math.NaN()
}

func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithOverrides 返回在t基础上覆盖了overrides的新Table
func (t *Table) WithOverrides(overrides map[string]float64) *Table {
	merged := New(t.name, t.values)
	for k, v := range overrides {
		merged.values[k] = v
	}
	return merged
}

// Missing 返回keys中不在表内的值，去重并排序。缺失值不计
func (t *Table) Missing(keys []string) []string {
	seen := make(map[string]struct{})
	for _, k := range keys {
		if core.IsMissing(k) {
			continue
		}
		if _, ok := t.values[k]; !ok {
			seen[k] = struct{}{}
		}
	}
	missing := make([]string, 0, len(seen))
	for k := range seen {
		missing = append(missing, k)
	}
	sort.Strings(missing)
	return missing
}

// 内置表只包含已知的两项：承运人AA与1月的平均到达延误。
// 其余承运人与月份须由配置项lookup.carrier、lookup.month提供，表中没有的值替换为NaN，对应的行会被删除
var carrierTable = New("carrier", map[string]float64{
	"AA": 6.209127910387774,
})

var monthTable = New("month", map[string]float64{
	"1": 3.9587876597858975,
})

// Carrier 内置的承运人平均延误表，只含AA
func Carrier() *Table {
	return carrierTable
}

// Month 内置的月份平均延误表，只含1月
func Month() *Table {
	return monthTable
}
