package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tiwac100/hydrogen/internal/domain"
)

const (
	maxFormBytes = 1 << 20 // 1MB

	// MethodOverrideField and MethodOverrideHeader let an HTML form, which can only
	// POST, ask for a delete.
	MethodOverrideField  = "_method"
	MethodOverrideHeader = "X-HTTP-Method-Override"
)

// parseSubmission reads the form body of r into a Submission. Only the body is read;
// query parameters never reach the dispatcher. Repeated keys keep their first value.
func parseSubmission(w http.ResponseWriter, r *http.Request) (domain.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	values, err := formValues(r)
	if err != nil {
		return domain.Submission{}, err
	}

	form := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			form[key] = vs[0]
		}
	}

	intent := domain.IntentSave
	if isDeleteRequest(r, form) {
		intent = domain.IntentDelete
	}

	return domain.Submission{
		Intent: intent,
		Form:   form,
		Locale: chi.URLParam(r, "locale"),
	}, nil
}

// formValues decodes urlencoded or multipart bodies. net/http only parses bodies of
// POST, PUT and PATCH, so a DELETE body is decoded by hand.
func formValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return r.MultipartForm.Value, nil
	}

	if r.Method == http.MethodDelete {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read form body: %w", err)
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse form body: %w", err)
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return r.PostForm, nil
}

func isDeleteRequest(r *http.Request, form map[string]string) bool {
	if r.Method == http.MethodDelete {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(r.Header.Get(MethodOverrideHeader)), http.MethodDelete) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(form[MethodOverrideField]), http.MethodDelete)
}
