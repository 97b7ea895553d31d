package binder

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxMemory caps the in-memory portion of a parsed multipart form.
const DefaultMaxMemory = 10 << 20 // 10 MB

// Request is the normalized view of an incoming request the binder consumes.
// It keeps route matching and wire-level parsing outside this package: the
// transport hands the binder string maps, a header multimap, and streams.
type Request interface {
	// Path returns the raw value of a matched path parameter.
	Path(name string) (string, bool)
	// Query returns the parsed query string.
	Query() url.Values
	// Header returns the request headers (case-insensitive multimap).
	Header() http.Header
	// Cookie returns the value of a named cookie.
	Cookie(name string) (string, bool)
	// Body returns the request payload stream.
	Body() (io.Reader, error)
	// Form returns url-encoded or multipart value fields, nil when the
	// request carries no form payload.
	Form() (url.Values, error)
	// FormFiles returns the multipart file parts uploaded under name.
	FormFiles(name string) ([]*multipart.FileHeader, error)
}

// PathExtractor reads a named path parameter from a matched request. An
// empty return value means the parameter is absent.
type PathExtractor func(r *http.Request, name string) string

// NewRequest adapts an *http.Request into the binder's Request view. The
// extractor plugs in whichever router matched the route, e.g. chi.URLParam.
func NewRequest(r *http.Request, path PathExtractor) Request {
	return &stdRequest{r: r, path: path}
}

type stdRequest struct {
	r    *http.Request
	path PathExtractor
}

func (s *stdRequest) Path(name string) (string, bool) {
	if s.path == nil {
		return "", false
	}
	v := s.path(s.r, name)
	return v, v != ""
}

func (s *stdRequest) Query() url.Values {
	return s.r.URL.Query()
}

func (s *stdRequest) Header() http.Header {
	return s.r.Header
}

func (s *stdRequest) Cookie(name string) (string, bool) {
	c, err := s.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *stdRequest) Body() (io.Reader, error) {
	return s.r.Body, nil
}

func (s *stdRequest) Form() (url.Values, error) {
	switch mediaType(s.r) {
	case "application/x-www-form-urlencoded":
		if err := s.r.ParseForm(); err != nil {
			return nil, err
		}
		return s.r.PostForm, nil
	case "multipart/form-data":
		if err := s.parseMultipart(); err != nil {
			return nil, err
		}
		return url.Values(s.r.MultipartForm.Value), nil
	}
	return nil, nil
}

func (s *stdRequest) FormFiles(name string) ([]*multipart.FileHeader, error) {
	if mediaType(s.r) != "multipart/form-data" {
		return nil, nil
	}
	if err := s.parseMultipart(); err != nil {
		return nil, err
	}
	return s.r.MultipartForm.File[name], nil
}

func (s *stdRequest) parseMultipart() error {
	if s.r.MultipartForm != nil {
		return nil
	}
	return s.r.ParseMultipartForm(DefaultMaxMemory)
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}
