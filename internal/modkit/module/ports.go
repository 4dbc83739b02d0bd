package module

import "reflect"

// PortsOf finds T in m.Ports(), either the bundle itself or one of its exported fields
func PortsOf[T any](m Module) (t T, ok bool) {
	p := m.Ports()
	if p == nil {
		return t, false
	}
	if v, hit := p.(T); hit {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return t, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return t, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, hit := f.Interface().(T); hit {
			return v, true
		}
	}
	return t, false
}

// MustPortsOf is PortsOf for wiring code, it panics naming the module
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	var zero T
	panic("module: " + m.Name() + " exposes no port of type " + reflect.TypeOf(&zero).Elem().String())
}
