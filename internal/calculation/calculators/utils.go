package calculators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/integrityops/vessel-compliance/internal/calculation"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeParams checks that all required keys are present, decodes the mapping into the
// calculator's typed input struct and validates it against the struct's schema tags.
// Every failure is reported as a calculation.ValidationError naming the offending field.
func decodeParams(params calculation.Params, keys []string, into any) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return calculation.NewValidationError(k, "is required")
		}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return calculation.NewValidationError("input_parameters", "is not serializable")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(into); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return calculation.NewValidationError(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type))
		}
		return calculation.NewValidationError("input_parameters", err.Error())
	}

	if err := validate.Struct(into); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return calculation.NewValidationError(jsonName(into, fe.StructField()), reasonFor(fe))
		}
		return err
	}

	return nil
}

// jsonName maps a struct field back to the parameter key it was decoded from.
func jsonName(s any, structField string) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
			return tag
		}
	}
	return structField
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
