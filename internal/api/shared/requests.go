package shared

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// IsFormEncoded reports whether the request body is an HTML form post.
// Submission clients post forms; API consumers post JSON; handlers
// accept both.
func IsFormEncoded(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// WantsAsync reports whether the request carries the asynchronous-mode
// marker, either as a form/query value or as the X-Requested-With
// header set by shop front ends. Handlers answer JSON task handles to
// async requests and plain redirects to everything else.
func WantsAsync(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}

	value := r.FormValue("ajax")
	if value == "" {
		value = r.URL.Query().Get("ajax")
	}

	on, err := strconv.ParseBool(value)
	return err == nil && on
}

// PrefersHTML reports whether the client accepts an HTML response.
// Polling clients send "application/json, text/html" so the failed-job
// fragment can be delivered; any text/html entry in the Accept header
// counts.
func PrefersHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
