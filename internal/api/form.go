package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/domain"
)

// fileField is the multipart field every upload route reads.
const fileField = "file"

// form is a request body flattened to string values, whatever its encoding.
type form struct {
	values url.Values
	file   *domain.Upload
}

func (f *form) get(key string) string { return strings.TrimSpace(f.values.Get(key)) }

// readForm accepts JSON, urlencoded and multipart bodies. JSON values are
// stringified so numbers and arrays arrive the way a form would send them.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "application/json":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, bodyError(err)
		}
		vals := make(url.Values, len(raw))
		for k, v := range raw {
			vals.Set(k, stringify(v))
		}
		return &form{values: vals}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxBody); err != nil {
			return nil, bodyError(err)
		}
		f := &form{values: url.Values(r.MultipartForm.Value)}
		up, err := readUpload(r)
		if err != nil {
			return nil, err
		}
		f.file = up
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, bodyError(err)
	}
	return &form{values: r.PostForm}, nil
}

func readUpload(r *http.Request) (*domain.Upload, error) {
	file, hdr, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, bodyError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	return &domain.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func bodyError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperr.Validation("Request body exceeds %d MB", tooBig.Limit>>20)
	}
	return apperr.Validation("Malformed request body")
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ",")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
