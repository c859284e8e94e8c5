package params

import (
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// Value is either a literal or a function of pointer velocity.
type Value[T any] struct {
	lit T
	fn  func(velocity mgl32.Vec2) T
}

func Literal[T any](v T) Value[T] {
	return Value[T]{lit: v}
}

func Computed[T any](fn func(velocity mgl32.Vec2) T) Value[T] {
	return Value[T]{fn: fn}
}

// Resolve returns the literal, or calls the function with velocity.
func (v Value[T]) Resolve(velocity mgl32.Vec2) T {
	if v.fn != nil {
		return v.fn(velocity)
	}
	return v.lit
}

func (v Value[T]) IsComputed() bool {
	return v.fn != nil
}

func (v Value[T]) String() string {
	if v.fn != nil {
		return "computed"
	}
	return fmt.Sprint(v.lit)
}

// decodeFrom accepts a T, a func(mgl32.Vec2) T, a Value[T], or anything the
// weak decoder can turn into a T.
func (v *Value[T]) decodeFrom(data any, decode func(in, out any) error) error {
	switch d := data.(type) {
	case Value[T]:
		*v = d
		return nil
	case T:
		*v = Literal(d)
		return nil
	case func(mgl32.Vec2) T:
		if d == nil {
			return fmt.Errorf("nil function")
		}
		*v = Computed(d)
		return nil
	}
	if reflect.TypeOf(data).Kind() == reflect.Func {
		return fmt.Errorf("function %T does not produce %T", data, v.lit)
	}
	var lit T
	if err := decode(data, &lit); err != nil {
		return err
	}
	*v = Literal(lit)
	return nil
}

type valueDecoder interface {
	decodeFrom(data any, decode func(in, out any) error) error
}

type computedReporter interface {
	IsComputed() bool
}

var valueDecoderType = reflect.TypeOf((*valueDecoder)(nil)).Elem()
