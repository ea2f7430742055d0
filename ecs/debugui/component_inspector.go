package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// ComponentInspector shows and edits the components of the entity selected in
// an EntityBrowser. Edits write straight into the stored value.
type ComponentInspector struct {
	browser *EntityBrowser
	fields  fieldCache
	raw     bool
}

func NewComponentInspector(browser *EntityBrowser) *ComponentInspector {
	return &ComponentInspector{browser: browser, fields: make(fieldCache)}
}

// ComponentView is one component of an inspected entity.
type ComponentView struct {
	Name  string
	Value any
	Data  string
	Err   error
}

// Inspect returns the components of id in store order with their serialized form.
func Inspect(scene *ecs.Scene, id ecs.EntityId) []ComponentView {
	var views []ComponentView
	for _, store := range scene.Stores() {
		value, ok := store.Value(id)
		if !ok {
			continue
		}
		data, _, err := store.SerializeState(id)
		views = append(views, ComponentView{Name: store.Name(), Value: value, Data: data, Err: err})
	}
	return views
}

func (ci *ComponentInspector) Render(scene *ecs.Scene, _ float64) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	id := ci.browser.Selected()
	if id == ecs.NoEntity {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}
	if !scene.EntityExists(id) {
		imgui.Text(fmt.Sprintf("Entity %d no longer exists", id.Index()))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity %d (generation %d)", id.Index(), id.Generation()))
	imgui.Checkbox("Show serialized", &ci.raw)
	imgui.Separator()

	for _, view := range Inspect(scene, id) {
		if !imgui.TreeNodeStr(view.Name) {
			continue
		}
		switch {
		case view.Err != nil:
			imgui.Text(fmt.Sprintf("error: %v", view.Err))
		case ci.raw:
			imgui.Text(view.Data)
		default:
			ci.renderValue(view.Name, reflect.ValueOf(view.Value))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ci *ComponentInspector) renderValue(id string, val reflect.Value) {
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	for _, field := range ci.fields.fields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Label))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(id+"."+field.Name, field.Label, fieldVal)
	}
}

// renderField draws an editor for val. val must be addressable for edits to stick.
func (ci *ComponentInspector) renderField(id, label string, val reflect.Value) {
	widget := "##" + id
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		ci.label(label)
		if imgui.InputInt(widget, &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		ci.label(label)
		if imgui.InputInt(widget, &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		ci.label(label)
		if imgui.InputFloat(widget, &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(label+widget, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		ci.label(label)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(widget, "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(label) {
			ci.renderValue(id, val)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", label, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", label, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", label, val.Interface()))
	}
}

func (ci *ComponentInspector) label(text string) {
	imgui.Text(text + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}
