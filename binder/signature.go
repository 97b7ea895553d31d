package binder

import (
	"fmt"
	"net/http"
	"net/textproto"
	"reflect"
	"strings"
	"sync"
)

// Source identifies where a parameter's raw value comes from.
type Source int

const (
	SourceNone Source = iota
	SourcePath
	SourceQuery
	SourceHeader
	SourceCookie
	SourceBody
	SourceForm
	SourceFile
	SourceValue  // request-scoped value injected by type identity
	SourceInject // dependency resolved through the container
)

func (s Source) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	case SourceForm:
		return "form"
	case SourceFile:
		return "file"
	case SourceValue:
		return "request value"
	case SourceInject:
		return "dependency"
	default:
		return "none"
	}
}

// sourceTags lists the recognized struct tags in the order they are probed.
var sourceTags = [...]struct {
	tag    string
	source Source
}{
	{"path", SourcePath},
	{"query", SourceQuery},
	{"header", SourceHeader},
	{"cookie", SourceCookie},
	{"body", SourceBody},
	{"form", SourceForm},
	{"file", SourceFile},
	{"inject", SourceInject},
}

// ParameterSpec describes one declared handler parameter. Built once at
// registration time and never mutated afterwards.
type ParameterSpec struct {
	FieldIndex int
	Name       string // declared field name, reported in errors
	Key        string // lookup key: tag alias, or the lowercased field name
	Source     Source
	Type       reflect.Type
	Required   bool
	HasDefault bool
	Default    reflect.Value
}

// Signature is the immutable per-route descriptor enumerating every declared
// parameter of a request struct type, in field declaration order.
type Signature struct {
	Type   reflect.Type
	Params []ParameterSpec
}

var (
	signatures sync.Map // reflect.Type -> *Signature

	httpRequestType = reflect.TypeOf((*http.Request)(nil))
)

// SignatureOf builds the Signature for a request struct type, or returns the
// cached one. Unsupported field types, malformed tags, and unconvertible
// default literals are rejected here so a broken route fails at registration,
// not on its first request.
func SignatureOf(t reflect.Type) (*Signature, error) {
	if cached, ok := signatures.Load(t); ok {
		return cached.(*Signature), nil
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrInvalidSignature, t)
	}

	sig := &Signature{Type: t}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		spec, err := buildSpec(i, field)
		if err != nil {
			return nil, err
		}
		if spec.Source == SourceNone {
			continue
		}
		sig.Params = append(sig.Params, spec)
	}

	cached, _ := signatures.LoadOrStore(t, sig)
	return cached.(*Signature), nil
}

// buildSpec derives the ParameterSpec for a single struct field. A field
// without a recognized tag is only bound when its type can be supplied by
// identity from the request scope (pointers and interfaces); anything else
// is left alone.
func buildSpec(index int, field reflect.StructField) (ParameterSpec, error) {
	spec := ParameterSpec{
		FieldIndex: index,
		Name:       field.Name,
		Type:       field.Type,
	}

	for _, st := range sourceTags {
		tag, ok := field.Tag.Lookup(st.tag)
		if !ok {
			continue
		}
		if spec.Source != SourceNone {
			return spec, fmt.Errorf("%w: field %s declares both %s and %s tags",
				ErrInvalidSignature, field.Name, spec.Source, st.source)
		}
		if tag == "-" {
			return ParameterSpec{Source: SourceNone}, nil
		}
		spec.Source = st.source
		if err := parseTagOptions(&spec, field, tag); err != nil {
			return spec, err
		}
	}

	if spec.Source == SourceNone {
		if field.Type == httpRequestType ||
			field.Type.Kind() == reflect.Interface ||
			field.Type.Kind() == reflect.Pointer {
			spec.Source = SourceValue
		}
		return spec, nil
	}

	return spec, validateSpec(&spec, field)
}

func parseTagOptions(spec *ParameterSpec, field reflect.StructField, tag string) error {
	// The default literal may itself contain commas (slice defaults), so it
	// is split off before the remaining comma-separated options.
	if idx := strings.Index(tag, ",default="); idx >= 0 {
		literal := tag[idx+len(",default="):]
		tag = tag[:idx]

		value, err := assign([]string{literal}, field.Type)
		if err != nil {
			return fmt.Errorf("%w: field %s: bad default literal %q: %v",
				ErrInvalidSignature, field.Name, literal, err)
		}
		spec.Default = value
		spec.HasDefault = true
	}

	parts := strings.Split(tag, ",")
	spec.Key = parts[0]
	for _, opt := range parts[1:] {
		switch opt {
		case "required":
			spec.Required = true
		case "", "omitempty":
			// Accepted for tag compatibility; no effect on binding.
		default:
			return fmt.Errorf("%w: field %s: unknown tag option %q",
				ErrInvalidSignature, field.Name, opt)
		}
	}

	if spec.Key == "" {
		spec.Key = strings.ToLower(field.Name)
	}

	switch spec.Source {
	case SourcePath:
		// Path segments cannot be absent when the route matched.
		spec.Required = true
	case SourceHeader:
		// Declared names use underscores; the wire format uses hyphens and
		// is case-insensitive.
		spec.Key = textproto.CanonicalMIMEHeaderKey(strings.ReplaceAll(spec.Key, "_", "-"))
	case SourceBody:
		if field.Type.Kind() != reflect.Pointer {
			spec.Required = true
		}
	}

	return nil
}

// validateSpec rejects parameter declarations the binder cannot satisfy.
func validateSpec(spec *ParameterSpec, field reflect.StructField) error {
	switch spec.Source {
	case SourcePath, SourceQuery, SourceHeader, SourceCookie, SourceForm:
		if !convertible(field.Type) {
			return fmt.Errorf("%w: field %s: %s values cannot be decoded into %s",
				ErrInvalidSignature, field.Name, spec.Source, field.Type)
		}
		if spec.HasDefault && spec.Required {
			return fmt.Errorf("%w: field %s: required parameter cannot carry a default",
				ErrInvalidSignature, field.Name)
		}
	case SourceBody:
		t := field.Type
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct && t.Kind() != reflect.Map && t.Kind() != reflect.Slice {
			return fmt.Errorf("%w: field %s: body target must be a struct, map, or slice, got %s",
				ErrInvalidSignature, field.Name, field.Type)
		}
	case SourceFile:
		if !isFileTarget(field.Type) {
			return fmt.Errorf("%w: field %s: file target must be File, *File, []File, or []*File, got %s",
				ErrInvalidSignature, field.Name, field.Type)
		}
	}
	return nil
}

func isFileTarget(t reflect.Type) bool {
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == reflect.TypeOf(File{})
}
