package planning

import (
	"fmt"
	"math"
	"strings"

	"github.com/wyfcoding/prodplan/money"
)

// Formulation 以文本形式展示问题对应的线性规划, 例如:
//
//	maximize   Z = 20 X + 30 Y
//	subject to
//	  labor: 4 X + 3 Y <= 120
//	bounds
//	  X >= 0
//	  Y >= 0
func (p *Problem) Formulation() string {
	names := make([]string, len(p.Products))
	profits := make([]float64, len(p.Products))
	for i, prod := range p.Products {
		names[i] = prod.Name
		profits[i] = prod.ProfitPerUnit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "maximize   Z = %s\n", linearExpr(profits, names))

	if len(p.Constraints) > 0 {
		b.WriteString("subject to\n")
		for _, c := range p.Constraints {
			row := make([]float64, len(p.Products))
			for i, prod := range p.Products {
				row[i] = prod.Coefficients[c.ResourceName]
			}
			fmt.Fprintf(&b, "  %s: %s <= %s\n", c.ResourceName, linearExpr(row, names), money.Compact(c.Capacity))
		}
	}

	b.WriteString("bounds\n")
	for i, name := range names {
		lo, hi := p.LowerBound(i), p.UpperBound(i)
		if math.IsInf(hi, 1) {
			fmt.Fprintf(&b, "  %s >= %s\n", name, money.Compact(lo))
			continue
		}
		fmt.Fprintf(&b, "  %s <= %s <= %s\n", money.Compact(lo), name, money.Compact(hi))
	}
	return b.String()
}

// linearExpr 渲染 Σ coef·name, 省略零系数, 系数为 1 时只写变量名.
func linearExpr(coefs []float64, names []string) string {
	var b strings.Builder
	for i, c := range coefs {
		if c == 0 {
			continue
		}
		abs := math.Abs(c)
		switch {
		case b.Len() == 0 && c < 0:
			b.WriteString("-")
		case b.Len() > 0 && c < 0:
			b.WriteString(" - ")
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		if abs != 1 {
			b.WriteString(money.Compact(abs))
			b.WriteString(" ")
		}
		b.WriteString(names[i])
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
