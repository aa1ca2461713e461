package jsonrpc

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Kind is the shape of an error variant.
type Kind int

const (
	KindFallback Kind = iota
	KindUnit
	KindStructured
	KindSingle
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindStructured:
		return "structured"
	case KindSingle:
		return "single"
	default:
		return "fallback"
	}
}

// FallbackName is the name of the variant produced for unregistered codes.
const FallbackName = "Unknown"

type decodeFunc func(json.RawMessage) (any, error)

// Field declares one named member of a structured variant's data.
type Field struct {
	Name     string
	wire     string
	optional bool
	decode   decodeFunc
}

// FieldOf declares a field decoded as T. The name is given in its canonical
// underscore separated form and looked up in camelCase on the wire.
func FieldOf[T any](name string) Field {
	return Field{Name: name, wire: WireName(name), decode: decodeAs[T]}
}

// OptionalFieldOf declares a field that may be absent or null. An absent
// field is not reported by ErrorVariant.Field.
func OptionalFieldOf[T any](name string) Field {
	f := FieldOf[T](name)
	f.optional = true
	return f
}

// WireName converts a canonical field name to its wire form:
// "query_era" becomes "queryEra".
func WireName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = toUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// Variant describes one registered error code.
type Variant struct {
	Code   int
	Name   string
	Kind   Kind
	fields []Field
	decode decodeFunc
}

// Fields returns the declared fields of a structured variant.
func (v Variant) Fields() []Field {
	return slices.Clone(v.fields)
}

// Unit declares a variant that carries its message only. Any data is ignored.
func Unit(code int, name string) Variant {
	return Variant{Code: code, Name: name, Kind: KindUnit}
}

// Structured declares a variant whose data is an object with the given fields.
func Structured(code int, name string, fields ...Field) Variant {
	return Variant{Code: code, Name: name, Kind: KindStructured, fields: fields}
}

// Single declares a variant whose data decodes wholesale as T.
func Single[T any](code int, name string) Variant {
	return Variant{Code: code, Name: name, Kind: KindSingle, decode: decodeAs[T]}
}

// Taxonomy is the closed set of error codes one domain can answer with. It is
// immutable once built and safe for concurrent use.
type Taxonomy struct {
	domain   string
	variants map[int]Variant
}

// NewTaxonomy builds a taxonomy. It panics on a duplicate code or a fallback
// kind, both of which are programming errors in the declaration.
func NewTaxonomy(domain string, variants ...Variant) *Taxonomy {
	t := &Taxonomy{domain: domain, variants: make(map[int]Variant, len(variants))}
	for _, v := range variants {
		if v.Kind == KindFallback {
			panic(fmt.Sprintf("jsonrpc: %s: variant %s has no shape", domain, v.Name))
		}
		if prev, ok := t.variants[v.Code]; ok {
			panic(fmt.Sprintf("jsonrpc: %s: code %d declared twice (%s, %s)", domain, v.Code, prev.Name, v.Name))
		}
		t.variants[v.Code] = v
	}
	return t
}

// Domain returns the name the taxonomy was built with.
func (t *Taxonomy) Domain() string {
	if t == nil {
		return ""
	}
	return t.domain
}

// Lookup returns the variant registered for code.
func (t *Taxonomy) Lookup(code int) (Variant, bool) {
	if t == nil {
		return Variant{}, false
	}
	v, ok := t.variants[code]
	return v, ok
}

// Codes returns the registered codes in ascending order.
func (t *Taxonomy) Codes() []int {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.variants))
}

// Resolve decodes a raw error object into its registered variant, or into
// the fallback variant when the code is not registered. It fails only when
// the object itself is malformed or a registered variant's data does not fit
// its declaration.
func (t *Taxonomy) Resolve(raw []byte) (*ErrorVariant, error) {
	var obj struct {
		Code    *int            `json:"code"`
		Message *string         `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: error object: %w", ErrDecode, err)
	}
	if obj.Code == nil {
		return nil, fmt.Errorf("%w: error object: missing code", ErrDecode)
	}
	if obj.Message == nil {
		return nil, fmt.Errorf("%w: error object: missing message", ErrDecode)
	}

	out := &ErrorVariant{
		Domain:  t.Domain(),
		Name:    FallbackName,
		Kind:    KindFallback,
		code:    *obj.Code,
		message: *obj.Message,
		Data:    json.RawMessage(jsonNull),
	}
	if !isAbsent(obj.Data) {
		out.Data = obj.Data
	}

	v, ok := t.Lookup(*obj.Code)
	if !ok {
		return out, nil
	}
	out.Name = v.Name
	out.Kind = v.Kind

	switch v.Kind {
	case KindStructured:
		fields, err := v.decodeFields(obj.Data)
		if err != nil {
			return nil, err
		}
		out.fields = fields
	case KindSingle:
		if isAbsent(obj.Data) {
			return nil, &FieldError{Variant: v.Name, Field: "data", Kind: MissingField}
		}
		payload, err := v.decode(obj.Data)
		if err != nil {
			return nil, &FieldError{Variant: v.Name, Field: "data", Kind: TypeMismatch, Err: err}
		}
		out.payload = payload
	}
	return out, nil
}

func (v Variant) decodeFields(data json.RawMessage) (map[string]any, error) {
	if isAbsent(data) {
		return nil, &FieldError{Variant: v.Name, Field: "data", Kind: MissingField}
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, &FieldError{Variant: v.Name, Field: "data", Kind: TypeMismatch, Err: err}
	}

	fields := make(map[string]any, len(v.fields))
	for _, f := range v.fields {
		raw, ok := members[f.wire]
		if f.optional && (!ok || isAbsent(raw)) {
			continue
		}
		if !ok {
			return nil, &FieldError{Variant: v.Name, Field: f.Name, Kind: MissingField}
		}
		val, err := f.decode(raw)
		if err != nil {
			return nil, &FieldError{Variant: v.Name, Field: f.Name, Kind: TypeMismatch, Err: err}
		}
		fields[f.Name] = val
	}
	return fields, nil
}

// decodeAs decodes raw as T. Unlike encoding/json it rejects null for types
// that cannot hold it, so a null where a value is required is a mismatch.
func decodeAs[T any](raw json.RawMessage) (any, error) {
	var out T
	if isAbsent(raw) {
		if !nullable(reflect.TypeFor[T]()) {
			return nil, fmt.Errorf("null is not a valid %s", reflect.TypeFor[T]())
		}
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

// ErrorVariant is a decoded error response. It is returned as data next to
// a nil error, and implements error so callers may propagate it as one.
type ErrorVariant struct {
	Domain string
	Name   string
	Kind   Kind
	// Data is the raw data member as received, "null" when absent.
	Data json.RawMessage

	code    int
	message string
	fields  map[string]any
	payload any
}

func (e *ErrorVariant) Code() int       { return e.code }
func (e *ErrorVariant) Message() string { return e.message }

// Known reports whether the code was registered in the taxonomy.
func (e *ErrorVariant) Known() bool { return e.Kind != KindFallback }

func (e *ErrorVariant) Error() string {
	return fmt.Sprintf("[%d] %s", e.code, e.message)
}

// Field returns a decoded field of a structured variant by canonical name.
func (e *ErrorVariant) Field(name string) (any, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// FieldNames returns the decoded field names in ascending order.
func (e *ErrorVariant) FieldNames() []string {
	return slices.Sorted(maps.Keys(e.fields))
}

// Payload returns the decoded data of a single variant.
func (e *ErrorVariant) Payload() any { return e.payload }

// FieldAs returns a structured field as T.
func FieldAs[T any](e *ErrorVariant, name string) (T, bool) {
	v, ok := e.fields[name]
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// PayloadAs returns the payload of a single variant as T.
func PayloadAs[T any](e *ErrorVariant) (T, bool) {
	out, ok := e.payload.(T)
	return out, ok
}
