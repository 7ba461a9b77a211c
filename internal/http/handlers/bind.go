package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the details.fields array in a 400 response.
// Field is the JSON name as the client sent it, not the Go field name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds the request body into out and answers the 400 itself on
// failure. Callers just bail out when it returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))
		return false
	}

	return true
}

func bindErrorDetails(err error, out interface{}) interface{} {
	rootType := structTypeOf(out)

	// binding-tag violations
	var validationErrs validator.ValidationErrors

	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))

		for _, fe := range validationErrs {
			rule := fe.Tag()
			param := fe.Param()

			fields = append(fields, FieldError{
				Field:   jsonPathForValidatorError(rootType, fe),
				Rule:    rule,
				Param:   param,
				Message: ruleMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}
	}

	// body is not JSON at all
	var syntaxErr *json.SyntaxError

	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	// right JSON, wrong type for a field
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		field := jsonPathForDotPath(rootType, typeErr.Field)

		if field == "" {
			field = strings.TrimSpace(typeErr.Field)
		}

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
				},
			},
		}
	}

	return gin.H{"reason": err.Error()}
}

func structTypeOf(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonPathForValidatorError maps a validator namespace like
// "RegisterPatientRequest.Email" to the JSON path "email".
func jsonPathForValidatorError(rootType reflect.Type, fe validator.FieldError) string {
	namespace := fe.StructNamespace()
	if namespace == "" {
		namespace = fe.Namespace()
	}
	if namespace == "" {
		return fe.Field()
	}

	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && rootType != nil && rootType.Name() != "" && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	if path := structPathToJSONPath(rootType, parts); path != "" {
		return path
	}

	return fe.Field()
}

func jsonPathForDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	return structPathToJSONPath(rootType, strings.Split(dotPath, "."))
}

func structPathToJSONPath(rootType reflect.Type, parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	current := rootType
	out := make([]string, 0, len(parts))

	for _, raw := range parts {
		if raw == "" {
			continue
		}

		fieldName, indexSuffix := splitIndexSuffix(raw)
		jsonName := fieldName

		var nextType reflect.Type
		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(fieldName); ok {
					jsonName = jsonFieldName(sf)
					nextType = sf.Type
				}
			}
		}

		out = append(out, jsonName+indexSuffix)

		if nextType != nil {
			current = elemType(nextType)
		} else {
			current = nil
		}
	}

	return strings.Join(out, ".")
}

func splitIndexSuffix(part string) (string, string) {
	idx := strings.Index(part, "[")
	if idx == -1 {
		return part, ""
	}

	return part[:idx], part[idx:]
}

func jsonFieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func elemType(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}

	return nil
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
