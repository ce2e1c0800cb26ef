// Package validation はリクエストDTOの入力検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/newsletterai/internal/model"
)

// FieldError は1フィールド分の検証エラー。
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Validator はgo-playground/validatorのラッパー。
// フィールド名はjsonタグの名前で報告する。
type Validator struct {
	validate *validator.Validate
}

// New は新しいValidatorを生成する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Fields は構造体を検証し、フィールドごとのエラーを返す。問題がなければnilを返す。
func (v *Validator) Fields(i any) []FieldError {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: msgForTag(fe),
		})
	}
	return out
}

// Struct は構造体を検証し、問題があればVALIDATION_ERRORのAPIErrorを返す。
// Messageは最初のエラー、Detailsは全エラーを連結したもの。
func (v *Validator) Struct(i any) error {
	fields := v.Fields(i)
	if len(fields) == 0 {
		return nil
	}

	apiErr := model.NewValidationError(fields[0].Message)
	if len(fields) > 1 {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Message)
		}
		apiErr.Details = strings.Join(msgs, "; ")
	}
	return apiErr
}

// msgForTag はタグに対応する利用者向けメッセージを返す。
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf("%s failed validation for tag: %s", field, fe.Tag())
	}
}
