// Package validator 提供了基于 go-playground/validator 的结构体校验与通用数值校验工具。
package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Default 返回注册了自定义标签的全局校验器。
//
// 自定义标签:
//   - finite: float 字段不能是 NaN 或 ±Inf; 指针为 nil 时跳过
func Default() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("finite", validateFinite)
		// 错误中的字段名使用 json 标签, 与输入契约保持一致。
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		instance = v
	})
	return instance
}

func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return IsFinite(field.Float())
	default:
		return true
	}
}

// Struct 校验结构体, 返回的错误描述列出全部失败字段。
func Struct(v any) error {
	err := Default().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}

// IsEmpty 判断去空格后的字符串是否为空。
func IsEmpty(val string) bool {
	return strings.TrimSpace(val) == ""
}

// IsFinite 判断浮点数既不是 NaN 也不是无穷大。
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsNonNegative 判断有限浮点数是否非负。
func IsNonNegative(v float64) bool {
	return IsFinite(v) && v >= 0
}
