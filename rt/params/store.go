// Package params holds effect configuration records with partial-update
// semantics.
package params

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag naming a parameter key.
const TagName = "fx"

// Patch is a partial parameter update keyed by schema name.
type Patch map[string]any

// Logger receives configuration errors.
type Logger interface {
	Errorf(format string, args ...any)
}

// ConfigError reports a patch key that was dropped.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("param %q: %s", e.Key, e.Reason)
}

// Store is the live parameter record of one effect. T must be a struct whose
// exported fields carry fx tags.
type Store[T any] struct {
	value  T
	keys   map[string][]int
	logger Logger
}

// NewStore copies defaults into a new store. Plain data is deep-cloned so the
// caller's slices and maps are never aliased. Records holding functions are
// kept as given.
func NewStore[T any](defaults T, logger Logger) *Store[T] {
	t := reflect.TypeOf(defaults)
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("params: %T is not a struct", defaults))
	}
	s := &Store[T]{keys: schema(t), logger: logger}
	if holdsFunctions(reflect.ValueOf(defaults)) {
		s.value = defaults
	} else {
		s.value = clonePlain(defaults)
	}
	return s
}

func schema(t reflect.Type) map[string][]int {
	keys := make(map[string][]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get(TagName)
		if key == "-" {
			continue
		}
		if key == "" {
			key = f.Name
		}
		keys[key] = f.Index
	}
	return keys
}

func holdsFunctions(v reflect.Value) bool {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !v.Type().Field(i).IsExported() {
			continue
		}
		switch {
		case f.Kind() == reflect.Func && !f.IsNil():
			return true
		case f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.Func && f.Len() > 0:
			return true
		}
		if c, ok := f.Interface().(computedReporter); ok && c.IsComputed() {
			return true
		}
	}
	return false
}

// plain reports whether values of t own all of their data.
func plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Array, reflect.Slice:
		return plain(t.Elem())
	case reflect.Map:
		return plain(t.Key()) && plain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() || !plain(t.Field(i).Type) {
				return false
			}
		}
	}
	return true
}

func clonePlain[T any](v T) T {
	out := v
	rv := reflect.ValueOf(&out).Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() || (f.Kind() != reflect.Slice && f.Kind() != reflect.Map) || f.IsNil() {
			continue
		}
		if !plain(f.Type()) {
			// Handles (textures, elements) are shared; only the container is copied.
			if f.Kind() == reflect.Slice {
				c := reflect.MakeSlice(f.Type(), f.Len(), f.Len())
				reflect.Copy(c, f)
				f.Set(c)
			}
			continue
		}
		dst := reflect.New(f.Type())
		if err := copier.CopyWithOption(dst.Interface(), f.Addr().Interface(), copier.Option{DeepCopy: true}); err != nil {
			panic(fmt.Sprintf("params: clone %s: %v", rv.Type().Field(i).Name, err))
		}
		f.Set(dst.Elem())
	}
	return out
}

// Get returns the current record.
func (s *Store[T]) Get() T {
	return s.value
}

// Ptr exposes the live record for effects that mutate their own state.
func (s *Store[T]) Ptr() *T {
	return &s.value
}

// Has reports whether key is part of the schema.
func (s *Store[T]) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Update merges patch into the record. Keys that are unknown, nil or fail to
// decode are logged and dropped; the remaining keys still apply. The dropped
// keys are returned as joined *ConfigError values.
func (s *Store[T]) Update(patch Patch) error {
	if len(patch) == 0 {
		return nil
	}
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	rv := reflect.ValueOf(&s.value).Elem()
	for _, key := range keys {
		data := patch[key]
		index, ok := s.keys[key]
		if !ok {
			errs = append(errs, s.reject(key, "does not exist in the params"))
			continue
		}
		if isNil(data) {
			errs = append(errs, s.reject(key, "value is nil"))
			continue
		}
		field := rv.FieldByIndex(index)
		decoded := reflect.New(field.Type())
		if err := decode(data, decoded.Interface()); err != nil {
			errs = append(errs, s.reject(key, err.Error()))
			continue
		}
		field.Set(decoded.Elem())
	}
	return errors.Join(errs...)
}

func (s *Store[T]) reject(key, reason string) error {
	err := &ConfigError{Key: key, Reason: reason}
	if s.logger != nil {
		s.logger.Errorf("%v", err)
	}
	return err
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// decode converts data into out, a pointer, using weak typing and the
// vector, color and Value hooks.
func decode(data any, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			valueHook,
			colorHook,
			vectorHook,
		),
		WeaklyTypedInput: true,
		TagName:          TagName,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return d.Decode(data)
}

func valueHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from == to || !reflect.PointerTo(to).Implements(valueDecoderType) {
		return data, nil
	}
	v := reflect.New(to)
	if err := v.Interface().(valueDecoder).decodeFrom(data, decode); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}

var vec3Type = reflect.TypeOf(mgl32.Vec3{})

// colorHook accepts "#rrggbb" strings for mgl32.Vec3.
func colorHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != vec3Type {
		return data, nil
	}
	str, ok := data.(string)
	if !ok {
		return data, nil
	}
	hex := strings.TrimPrefix(str, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("color %q is not #rrggbb", str)
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", str, err)
	}
	return mgl32.Vec3{
		float32((rgb>>16)&0xff) / 255,
		float32((rgb>>8)&0xff) / 255,
		float32(rgb&0xff) / 255,
	}, nil
}

// vectorHook accepts a single number for any mgl32 vector (splatted to every
// component) and {x, y, z, w} maps.
func vectorHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Array || to.Elem().Kind() != reflect.Float32 || from.Kind() == reflect.Array || from.Kind() == reflect.Slice {
		return data, nil
	}
	out := reflect.New(to).Elem()
	switch from.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
		f := reflect.ValueOf(data).Convert(reflect.TypeOf(float64(0))).Float()
		for i := 0; i < out.Len(); i++ {
			out.Index(i).SetFloat(f)
		}
		return out.Interface(), nil
	case reflect.Map:
		m, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		for i, name := range []string{"x", "y", "z", "w"}[:out.Len()] {
			c, ok := m[name]
			if !ok {
				continue
			}
			var f float32
			if err := decode(c, &f); err != nil {
				return nil, fmt.Errorf("component %s: %w", name, err)
			}
			out.Index(i).SetFloat(float64(f))
		}
		return out.Interface(), nil
	}
	return data, nil
}
