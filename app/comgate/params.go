package comgate

import (
	"fmt"
	"net/url"
	"reflect"
)

// PrepareParams normalizes request parameters for the gateway form encoding.
// Booleans become "true"/"false", nil values (including nil pointers) are
// dropped and non-nil pointers are dereferenced. Everything else is kept as is.
func PrepareParams(params map[string]any) map[string]any {
	prepared := make(map[string]any, len(params))
	for name, value := range params {
		value, ok := derefOptional(value)
		if !ok {
			continue
		}
		if b, isBool := value.(bool); isBool {
			if b {
				value = "true"
			} else {
				value = "false"
			}
		}
		prepared[name] = value
	}
	return prepared
}

// EncodeParams prepares params and renders them as url.Values.
func EncodeParams(params map[string]any) url.Values {
	values := url.Values{}
	for name, value := range PrepareParams(params) {
		values.Set(name, fmt.Sprint(value))
	}
	return values
}

func derefOptional(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer {
		return value, true
	}
	if rv.IsNil() {
		return nil, false
	}
	return rv.Elem().Interface(), true
}
