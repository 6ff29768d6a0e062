package planning

import (
	"errors"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/wyfcoding/prodplan/money"
)

// csvRow 是导出文件的一行, 数值已按计划精度格式化.
type csvRow struct {
	Product       string `csv:"product"`
	Quantity      string `csv:"quantity"`
	ProfitPerUnit string `csv:"profit_per_unit"`
	TotalProfit   string `csv:"total_profit"`
}

var errNilPlan = errors.New("planning: nil plan")

func csvRows(plan *Plan) []*csvRow {
	rows := make([]*csvRow, 0, len(plan.Quantities))
	for _, q := range plan.Quantities {
		rows = append(rows, &csvRow{
			Product:       q.ProductName,
			Quantity:      money.Format(q.Quantity, plan.Precision),
			ProfitPerUnit: money.Format(q.ProfitPerUnit, plan.Precision),
			TotalProfit:   money.Format(q.Profit, plan.Precision),
		})
	}
	return rows
}

// WriteCSV 以 product,quantity,profit_per_unit,total_profit 表头导出计划, 每个产品一行.
func WriteCSV(w io.Writer, plan *Plan) error {
	if plan == nil {
		return errNilPlan
	}
	rows := csvRows(plan)
	return gocsv.Marshal(&rows, w)
}

// MarshalCSV 返回 CSV 文本.
func MarshalCSV(plan *Plan) (string, error) {
	if plan == nil {
		return "", errNilPlan
	}
	rows := csvRows(plan)
	return gocsv.MarshalString(&rows)
}
