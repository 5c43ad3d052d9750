package ecs

import "reflect"

// Resources are single global instances keyed by type, independent of
// entities. They are stored behind pointers so fetched handles stay valid
// across inserts of other resources.
type resourceMap struct {
	data map[reflect.Type]any // reflect.Type -> *T
}

func newResourceMap() resourceMap {
	return resourceMap{data: make(map[reflect.Type]any)}
}

func (m *resourceMap) insert(t reflect.Type, ptr any) {
	m.data[t] = ptr
}

func (m *resourceMap) get(t reflect.Type) (any, bool) {
	v, ok := m.data[t]
	return v, ok
}

func (m *resourceMap) remove(t reflect.Type) bool {
	if _, ok := m.data[t]; !ok {
		return false
	}
	delete(m.data, t)
	return true
}

// InsertResource stores value as the single global instance of T,
// replacing any previous one.
func InsertResource[T any](w *World, value T) {
	ptr := new(T)
	*ptr = value
	w.resources.insert(reflect.TypeFor[T](), ptr)
}

// Resource returns the global instance of T, if present. Absence is an
// expected condition, not an error.
func Resource[T any](w *World) (*T, bool) {
	v, ok := w.resources.get(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// RemoveResource deletes the global instance of T and reports whether one
// existed.
func RemoveResource[T any](w *World) bool {
	return w.resources.remove(reflect.TypeFor[T]())
}

// insertResourceValue is the type-erased insert used by buffered commands.
func (w *World) insertResourceValue(value any) {
	t := reflect.TypeOf(value)
	if t == nil {
		panic("ecs: nil resource")
	}
	if t.Kind() == reflect.Ptr {
		w.resources.insert(t.Elem(), value)
		return
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(value))
	w.resources.insert(t, ptr.Interface())
}
