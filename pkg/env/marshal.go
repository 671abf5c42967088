package env

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// MarshalEnv reflects over the struct and creates .env content from tags.
// Zero values are skipped so envDefault keeps applying on load, except a
// false bool whose default is true.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("marshal env: expected struct, got %s", v.Kind())
	}
	t := v.Type()

	var lines []string
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("env")

		if tag == "" || !field.IsExported() {
			continue
		}

		// Tag forms: "KEY", "KEY,required,notEmpty"
		key := strings.Split(tag, ",")[0]
		if key == "" {
			continue
		}

		val := v.Field(i)
		if val.IsZero() && !overridesDefault(val, field.Tag.Get("envDefault")) {
			continue
		}

		sep := field.Tag.Get("envSeparator")
		if sep == "" {
			sep = ","
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, formatValue(val, sep)))
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return result, nil
}

// WriteFile marshals every config into a single .env file. It refuses to
// overwrite an existing file.
func WriteFile(path string, configs ...any) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf(".env file already exists at %s", path)
	}

	var content strings.Builder
	for _, c := range configs {
		s, err := MarshalEnv(c)
		if err != nil {
			return err
		}
		content.WriteString(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	return os.WriteFile(path, []byte(content.String()), 0600)
}

func overridesDefault(v reflect.Value, def string) bool {
	if v.Kind() != reflect.Bool || def == "" {
		return false
	}
	b, err := strconv.ParseBool(def)
	return err == nil && b
}

func formatValue(v reflect.Value, sep string) string {
	switch v.Kind() {
	case reflect.String:
		return quote(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = fmt.Sprintf("%v", v.Index(i).Interface())
		}
		return quote(strings.Join(items, sep))
	default:
		return quote(fmt.Sprintf("%v", v.Interface()))
	}
}

// quote wraps values godotenv would otherwise trim or split.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " #\"'") || strings.TrimSpace(s) != s {
		return strconv.Quote(s)
	}
	return s
}
