package debugui

import (
	"reflect"
	"strings"
)

// fieldInfo describes an exported struct field shown by the component inspector.
type fieldInfo struct {
	Name      string
	Label     string
	Index     int
	IsPointer bool
}

// fieldCache memoizes the exported fields of inspected types. It is only used
// from the render goroutine.
type fieldCache map[reflect.Type][]fieldInfo

func (c fieldCache) fields(t reflect.Type) []fieldInfo {
	if cached, ok := c[t]; ok {
		return cached
	}

	var fields []fieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			label := field.Name
			if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag == "-" {
				continue
			} else if tag != "" {
				label = tag
			}

			fields = append(fields, fieldInfo{
				Name:      field.Name,
				Label:     label,
				Index:     i,
				IsPointer: field.Type.Kind() == reflect.Ptr,
			})
		}
	}

	c[t] = fields
	return fields
}
