package planning

import (
	"encoding/json"

	"github.com/wyfcoding/prodplan/xerrors"
)

// OutcomeQuantity 是输出契约中的单个产品产量.
type OutcomeQuantity struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
}

// Outcome 是对外的输出契约:
//
//	成功: {"status":"optimal","quantities":[...],"total_profit":1200}
//	失败: {"status":"infeasible","message":"..."}
type Outcome struct {
	Status      Status            `json:"status"`
	Quantities  []OutcomeQuantity `json:"quantities,omitempty"`
	TotalProfit *float64          `json:"total_profit,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// NewOutcome 由 Solve 的返回值构造输出契约.
func NewOutcome(plan *Plan, err error) Outcome {
	if err == nil && plan == nil {
		err = xerrors.Internal("no plan produced", nil)
	}
	if err != nil {
		return Outcome{Status: StatusOf(err), Message: messageOf(err)}
	}

	out := Outcome{
		Status:     StatusOptimal,
		Quantities: make([]OutcomeQuantity, len(plan.Quantities)),
	}
	for i, q := range plan.Quantities {
		out.Quantities[i] = OutcomeQuantity{ProductName: q.ProductName, Quantity: q.Quantity}
	}
	total := plan.TotalProfit
	out.TotalProfit = &total
	return out
}

// JSON 序列化输出契约.
func (o Outcome) JSON() ([]byte, error) {
	return json.Marshal(o)
}

func messageOf(err error) string {
	e, ok := xerrors.FromError(err)
	if !ok {
		return err.Error()
	}
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}
