// Package tachyon is a small HTTP framework built around two pieces: a
// schema-driven parameter binder and a reflection dependency container.
// Handlers declare everything they need (path, query, header, cookie,
// body, form, and file parameters, plus injected collaborators) as fields
// of a request struct, and receive it fully populated:
//
//	type GetUserRequest struct {
//		ID     uuid.UUID  `path:"id"`
//		Expand bool       `query:"expand,default=false"`
//		Users  *UserStore `inject:""`
//	}
//
//	app := tachyon.New()
//	app.Container().Provide(NewUserStore)
//
//	tachyon.Get(app, "/users/{id}", func(ctx tachyon.Context, req GetUserRequest) tachyon.Response {
//		user, err := req.Users.Find(ctx, req.ID)
//		if err != nil {
//			return tachyon.Error(http.StatusNotFound, "user not found")
//		}
//		return tachyon.JSON(user)
//	})
//
//	http.ListenAndServe(":8080", app)
//
// The descriptor for a request struct is built once at registration and a
// broken declaration panics there, not on the first request. Per request,
// the framework opens a fresh dependency scope, seeds it with the raw
// *http.Request and a background task sink, binds the request struct, and
// maps failures to JSON problem responses: validation errors to 422 (404
// for path parameters), configuration errors and collaborator failures
// to 500.
package tachyon
