// Package upload stores bound multipart uploads behind a small Storage
// interface with local filesystem and S3 backends, plus validation helpers
// that work on sniffed content rather than client-declared types.
//
// Typical handler flow:
//
//	type attachRequest struct {
//		Doc   binder.File    `file:"doc,required"`
//		Store upload.Storage `inject:""`
//	}
//
//	if err := upload.ValidateSize(&r.Doc, 5<<20); err != nil { ... }
//	stored, err := r.Store.Save(ctx, &r.Doc, "docs/"+upload.SanitizeFilename(r.Doc.Filename))
package upload
