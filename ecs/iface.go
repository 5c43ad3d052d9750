package ecs

import (
	"reflect"
	"unsafe"
)

// iface mirrors the runtime layout of an interface{} value.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// dataPointer extracts the data word from an interface value. For an
// interface holding T the word points at the boxed value; for an interface
// holding *T it is the pointer itself.
func dataPointer(v any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&v)).data
}

// componentValue resolves an `any` component argument into its value type
// and the address of its bytes, accepting both T and *T.
func componentValue(comp any) (reflect.Type, unsafe.Pointer) {
	t := reflect.TypeOf(comp)
	if t == nil {
		panic("ecs: nil component")
	}
	if t.Kind() == reflect.Ptr {
		return t.Elem(), dataPointer(comp)
	}
	return t, dataPointer(comp)
}
