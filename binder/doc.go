// Package binder turns an incoming HTTP request into a fully populated,
// typed request struct.
//
// A request struct declares its parameters with struct tags naming the
// source each field is read from:
//
//	type SearchRequest struct {
//		TenantID uuid.UUID `path:"tenant_id"`
//		Query    string    `query:"q,required"`
//		Limit    int       `query:"limit,default=20"`
//		Trace    string    `header:"x_request_id"`
//		Session  string    `cookie:"sid"`
//		Filter   Filter    `body:"json"`
//		Avatar   *File     `file:"avatar"`
//		Users    UserStore `inject:""`
//	}
//
// The descriptor for a struct type (its Signature) is built once, at route
// registration time, and reused for every request. Binding walks the
// declared parameters in field order, extracting and converting raw values,
// and fails fast on the first missing or invalid parameter with a
// ValidationError naming the field and the expected type.
//
// Fields tagged inject are not extracted from the request at all; they are
// handed to a Resolver, which the surrounding application backs with its
// dependency container. Untagged pointer or interface fields are matched
// against request-scoped values seeded by the transport layer (the raw
// *http.Request, the background task sink) purely by type identity.
package binder
