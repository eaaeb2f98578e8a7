package postgres

import (
	"reflect"
	"strings"
)

// ExtractDBColumns extracts all column names from struct "db" tags.
// It handles embedded structs recursively. Fields tagged "-" or untagged
// are skipped.
//
// Usage:
//
//	columns := ExtractDBColumns[tenant.CompanyInfo]()
//	// Returns: ["id", "name", "subdomain", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return extractColumnsFromType(reflect.TypeOf(zero))
}

func extractColumnsFromType(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous {
			cols = append(cols, extractColumnsFromType(field.Type)...)
			continue
		}

		tag, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}
