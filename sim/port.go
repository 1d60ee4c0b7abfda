package sim

import (
	"fmt"
	"reflect"
)

// Signal is the payload of ports that carry no value.
type Signal struct{}

// InputPort is a named, typed attachment point that owns the handler invoked
// when a connected output emits to it.
type InputPort struct {
	name   string
	typ    reflect.Type
	handle func(ctx *ModelCtx, v any) error
}

// Input declares an input port carrying values of type T.
func Input[T any](name string, handle func(ctx *ModelCtx, v T) error) InputPort {
	return InputPort{
		name: name,
		typ:  typeOf[T](),
		handle: func(ctx *ModelCtx, v any) error {
			if v == nil {
				var zero T
				return handle(ctx, zero)
			}
			return handle(ctx, v.(T))
		},
	}
}

// SignalInput declares an input port carrying Signal values.
func SignalInput(name string, handle func(ctx *ModelCtx) error) InputPort {
	return Input(name, func(ctx *ModelCtx, _ Signal) error { return handle(ctx) })
}

// Name returns the port name.
func (p InputPort) Name() string { return p.name }

// Type returns the declared value type.
func (p InputPort) Type() reflect.Type { return p.typ }

// OutputPort is a named, typed emission point. It has no handler.
type OutputPort struct {
	name string
	typ  reflect.Type
}

// Name returns the port name.
func (p OutputPort) Name() string { return p.name }

// Type returns the declared value type.
func (p OutputPort) Type() reflect.Type { return p.typ }

// Output is a typed handle to an output port. Models usually keep one per
// declared output and emit through it.
type Output[T any] struct {
	name string
}

// NewOutput declares an output port carrying values of type T.
func NewOutput[T any](name string) Output[T] { return Output[T]{name: name} }

// Name returns the port name.
func (o Output[T]) Name() string { return o.name }

// Port returns the declaration to list in Ports.Outputs.
func (o Output[T]) Port() OutputPort { return OutputPort{name: o.name, typ: typeOf[T]()} }

// Emit sends v through the port. Routing happens before Emit returns.
func (o Output[T]) Emit(ctx *ModelCtx, v T) error {
	return ctx.emit(o.name, v)
}

// Ports lists a model's declared ports. It is read once, when the model is
// added to a simulation.
type Ports struct {
	Inputs  []InputPort
	Outputs []OutputPort
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// assignable reports whether v may travel through a port of type typ.
func assignable(v any, typ reflect.Type) bool {
	if v == nil {
		switch typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		}
		return false
	}
	return reflect.TypeOf(v).AssignableTo(typ)
}

func describeType(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", typ)
}

func describeValueType(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
