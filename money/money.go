// Package money 提供了基于 shopspring/decimal 的定点舍入与金额计算能力.
// 计划中的产量与利润只在展示阶段按固定小数位舍入, 计算过程保持 float64 原值.
package money

import (
	"github.com/shopspring/decimal"
)

// DefaultPlaces 默认保留的小数位数.
const DefaultPlaces int32 = 2

// Money 封装了高精度的金额处理.
type Money struct {
	value decimal.Decimal
}

// New 从 float64 创建 Money.
func New(val float64) Money {
	return Money{value: decimal.NewFromFloat(val)}
}

// ToFloat 转换为 float64.
func (m Money) ToFloat() float64 {
	f, _ := m.value.Float64()
	return f
}

// Add 加法.
func (m Money) Add(other Money) Money {
	return Money{value: m.value.Add(other.value)}
}

// Mul 乘法.
func (m Money) Mul(factor float64) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(factor))}
}

// Round 四舍五入 (远离零) 到指定小数位.
func (m Money) Round(places int32) Money {
	return Money{value: m.value.Round(places)}
}

// Round 将 float64 按 places 位小数四舍五入 (远离零), 并消除 -0.
func Round(val float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(val).Round(places).Float64()
	if f == 0 {
		return 0
	}
	return f
}

// Format 将 float64 格式化为固定小数位字符串.
func Format(val float64, places int32) string {
	d := decimal.NewFromFloat(val).Round(places)
	if d.IsZero() {
		d = decimal.Zero
	}
	return d.StringFixed(places)
}

// Compact 返回不带多余尾零的十进制表示, 用于公式展示.
func Compact(val float64) string {
	return decimal.NewFromFloat(val).String()
}

// Sum 以十进制累加, 避免逐项相加的浮点误差.
func Sum(vals ...float64) float64 {
	total := New(0)
	for _, v := range vals {
		total = total.Add(New(v))
	}
	return total.ToFloat()
}

// LineTotal 计算单价 × 数量并按 places 位舍入.
func LineTotal(unit, qty float64, places int32) float64 {
	return New(unit).Mul(qty).Round(places).ToFloat()
}
