package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
)

// ParseForm parses a form-encoded body, guarding against oversized payloads.
func ParseForm(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return nil
}

// FormValue returns the trimmed form field.
func FormValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
