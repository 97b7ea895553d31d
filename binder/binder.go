package binder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Resolver supplies the parameters the binder does not extract itself:
// dependency-typed fields and request-scoped values injected by type
// identity. The surrounding application backs it with its container and the
// per-request scope.
type Resolver interface {
	// Resolve constructs or fetches the dependency registered for t.
	Resolve(ctx context.Context, t reflect.Type) (any, error)
	// Value looks up a request-scoped value seeded under exactly t.
	Value(t reflect.Type) (any, bool)
}

// Bind populates target, a non-nil pointer to a struct of the signature's
// type, from the request view. Parameters are processed in declaration
// order and binding stops at the first missing or invalid one.
//
// The returned release function closes every request-scoped resource the
// bind opened (uploaded file handles) and is never nil; callers must invoke
// it when the request completes, on success and on failure alike.
func (s *Signature) Bind(ctx context.Context, req Request, res Resolver, target any) (release func(), err error) {
	var closers []io.Closer
	release = func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != s.Type {
		return release, fmt.Errorf("binder: target must be a non-nil *%s", s.Type)
	}
	rv = rv.Elem()

	for i := range s.Params {
		spec := &s.Params[i]
		field := rv.Field(spec.FieldIndex)

		switch spec.Source {
		case SourcePath:
			raw, ok := req.Path(spec.Key)
			if !ok {
				err = s.absent(spec, field)
			} else {
				err = s.setValues(spec, field, []string{raw})
			}

		case SourceQuery:
			values := req.Query()[spec.Key]
			if len(values) == 0 {
				err = s.absent(spec, field)
			} else {
				err = s.setValues(spec, field, values)
			}

		case SourceHeader:
			values := req.Header()[spec.Key]
			if len(values) == 0 {
				err = s.absent(spec, field)
			} else {
				err = s.setValues(spec, field, values)
			}

		case SourceCookie:
			raw, ok := req.Cookie(spec.Key)
			if !ok {
				err = s.absent(spec, field)
			} else {
				err = s.setValues(spec, field, []string{raw})
			}

		case SourceForm:
			var form map[string][]string
			form, err = req.Form()
			if err != nil {
				err = &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
				break
			}
			values := form[spec.Key]
			if len(values) == 0 {
				err = s.absent(spec, field)
			} else {
				err = s.setValues(spec, field, values)
			}

		case SourceBody:
			err = s.bindBody(spec, field, req)

		case SourceFile:
			err = s.bindFile(spec, field, req, &closers)

		case SourceValue:
			if v, ok := res.Value(spec.Type); ok {
				field.Set(reflect.ValueOf(v))
			}

		case SourceInject:
			var v any
			v, err = res.Resolve(ctx, spec.Type)
			if err != nil {
				// Resolution and configuration failures pass through
				// untouched so the outer layer can classify them.
				return release, err
			}
			vv := reflect.ValueOf(v)
			if !vv.IsValid() {
				vv = reflect.Zero(spec.Type)
			}
			field.Set(vv)
		}

		if err != nil {
			return release, err
		}
	}

	return release, nil
}

// absent applies the declared default, or fails when the parameter is
// required.
func (s *Signature) absent(spec *ParameterSpec, field reflect.Value) error {
	if spec.HasDefault {
		field.Set(spec.Default)
		return nil
	}
	if spec.Required {
		return &ValidationError{
			Field:    spec.Name,
			Source:   spec.Source,
			Expected: typeName(spec.Type),
			Err:      ErrMissingParameter,
		}
	}
	return nil
}

func (s *Signature) setValues(spec *ParameterSpec, field reflect.Value, raw []string) error {
	v, err := assign(raw, spec.Type)
	if err != nil {
		return &ValidationError{
			Field:    spec.Name,
			Source:   spec.Source,
			Expected: typeName(spec.Type),
			Err:      ErrInvalidParameter,
			Reason:   err.Error(),
		}
	}
	field.Set(v)
	return nil
}

func (s *Signature) bindBody(spec *ParameterSpec, field reflect.Value, req Request) error {
	body, err := req.Body()
	if err != nil {
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
	}

	var data []byte
	if body != nil {
		data, err = io.ReadAll(body)
		if err != nil {
			return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if spec.Required {
			return &ValidationError{
				Field:    spec.Name,
				Source:   spec.Source,
				Expected: typeName(spec.Type),
				Err:      ErrBodyMissing,
			}
		}
		return nil
	}

	targetType := spec.Type
	ptr := reflect.New(targetType)
	if targetType.Kind() == reflect.Pointer {
		ptr = reflect.New(targetType.Elem())
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr.Interface()); err != nil {
		return bodyDecodeError(spec, err)
	}
	if dec.More() {
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrBodyInvalid, Reason: "unexpected data after JSON value"}
	}

	if spec.Type.Kind() == reflect.Pointer {
		field.Set(ptr)
	} else {
		field.Set(ptr.Elem())
	}
	return nil
}

// bodyDecodeError separates structural/type mismatches from malformed JSON;
// both are client errors, but clients diagnose them differently.
func bodyDecodeError(spec *ParameterSpec, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		reason := fmt.Sprintf("field %q expects %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		if typeErr.Field == "" {
			reason = fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrBodyInvalid, Reason: reason}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || err == io.ErrUnexpectedEOF {
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: "invalid JSON"}
	}

	// DisallowUnknownFields and similar shape violations.
	return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrBodyInvalid, Reason: err.Error()}
}

func (s *Signature) bindFile(spec *ParameterSpec, field reflect.Value, req Request, closers *[]io.Closer) error {
	headers, err := req.FormFiles(spec.Key)
	if err != nil {
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
	}

	if len(headers) == 0 {
		if spec.Required {
			return &ValidationError{Field: spec.Name, Source: spec.Source, Expected: "file", Err: ErrMissingParameter}
		}
		return nil
	}

	t := spec.Type
	if t.Kind() == reflect.Slice {
		slice := reflect.MakeSlice(t, 0, len(headers))
		for _, h := range headers {
			f, err := openFile(h)
			if err != nil {
				return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
			}
			*closers = append(*closers, f)
			if t.Elem().Kind() == reflect.Pointer {
				slice = reflect.Append(slice, reflect.ValueOf(f))
			} else {
				slice = reflect.Append(slice, reflect.ValueOf(*f))
			}
		}
		field.Set(slice)
		return nil
	}

	f, err := openFile(headers[0])
	if err != nil {
		return &ValidationError{Field: spec.Name, Source: spec.Source, Err: ErrMalformedPayload, Reason: err.Error()}
	}
	*closers = append(*closers, f)
	if t.Kind() == reflect.Pointer {
		field.Set(reflect.ValueOf(f))
	} else {
		field.Set(reflect.ValueOf(*f))
	}
	return nil
}
