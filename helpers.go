package currency

import (
	"context"
	"reflect"
)

// HelperConfig configures template helper exports
type HelperConfig struct {
	// ContextKey names the map key or struct field holding a context.Context
	// in the template data. Defaults to "Context".
	ContextKey string
}

// TemplateHelpers exposes the engine to html/template and text/template.
// Every helper takes the template data first so the request context can
// reach the resolver; without one context.Background is used.
func TemplateHelpers(engine *Engine, cfg HelperConfig) map[string]any {
	key := cfg.ContextKey
	if key == "" {
		key = "Context"
	}

	return map[string]any{
		"format_currency": func(data any, amount float64, code ...string) string {
			return engine.FormatCurrency(extractContext(data, key), amount, first(code))
		},

		"convert_currency": func(data any, amount float64, from string, to ...string) string {
			return engine.ConvertAndFormat(extractContext(data, key), amount, from, first(to))
		},

		"smart_currency": func(data any, amount float64, base string) string {
			return engine.SmartFormatCurrency(extractContext(data, key), amount, base)
		},

		"currency_symbol": func(data any, code ...string) string {
			target := first(code)
			if target == "" {
				target = engine.UserCurrency(extractContext(data, key))
			}
			if entry, ok := engine.CurrencyInfo(target); ok {
				return entry.Symbol
			}
			return normalizeCode(target)
		},

		"user_currency": func(data any) string {
			return engine.UserCurrency(extractContext(data, key))
		},
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// extractContext finds a context in template data: the data itself, a map
// entry, or an exported struct field named key.
func extractContext(data any, key string) context.Context {
	if data == nil {
		return context.Background()
	}

	if ctx, ok := data.(context.Context); ok {
		return ctx
	}

	if m, ok := data.(map[string]any); ok {
		if ctx, ok := m[key].(context.Context); ok && ctx != nil {
			return ctx
		}
		return context.Background()
	}

	value := reflect.ValueOf(data)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return context.Background()
		}
		value = value.Elem()
	}

	if value.Kind() == reflect.Struct {
		field := value.FieldByName(key)
		if field.IsValid() && field.CanInterface() {
			if ctx, ok := field.Interface().(context.Context); ok && ctx != nil {
				return ctx
			}
		}
	}

	return context.Background()
}
