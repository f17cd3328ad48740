package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "auctionserver/internal/errors"
)

type ctxKey int

const (
	jsonBodyKey ctxKey = iota
	cookiesKey
	formKey
)

// JSONBody parses application/json request bodies up to limit bytes. Only
// objects and arrays are accepted at the top level. The raw document is kept
// in the context and the body is rewound for downstream handlers.
func JSONBody(limit int64, onError ErrorResponder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasMediaType(r, "application/json") || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			r.Body.Close()
			if err != nil {
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					onError(w, r, err)
					return
				}
				onError(w, r, apperrors.ErrInvalidRequest.Wrap(err))
				return
			}

			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) > 0 {
				if first := trimmed[0]; (first != '{' && first != '[') || !json.Valid(trimmed) {
					onError(w, r, apperrors.ErrMalformedJSON)
					return
				}
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			ctx := context.WithValue(r.Context(), jsonBodyKey, json.RawMessage(trimmed))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JSONBodyFrom returns the parsed JSON body, if JSONBody saw one.
func JSONBodyFrom(ctx context.Context) (json.RawMessage, bool) {
	raw, ok := ctx.Value(jsonBodyKey).(json.RawMessage)
	return raw, ok && len(raw) > 0
}

// DecodeJSONBody decodes the parsed JSON body into v.
func DecodeJSONBody(r *http.Request, v interface{}) error {
	raw, ok := JSONBodyFrom(r.Context())
	if !ok {
		return apperrors.ErrInvalidRequest
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.ErrMalformedJSON.Wrap(err)
	}
	return nil
}

// Cookies parses the Cookie header into a name to value map. When a name
// repeats, the first value wins.
func Cookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parsed := make(map[string]string)
		for _, c := range r.Cookies() {
			if _, seen := parsed[c.Name]; !seen {
				parsed[c.Name] = c.Value
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cookiesKey, parsed)))
	})
}

// CookiesFrom returns the cookies parsed by Cookies.
func CookiesFrom(ctx context.Context) map[string]string {
	parsed, _ := ctx.Value(cookiesKey).(map[string]string)
	return parsed
}

// CookieValue returns a single parsed cookie.
func CookieValue(ctx context.Context, name string) (string, bool) {
	v, ok := CookiesFrom(ctx)[name]
	return v, ok
}

// URLEncoded parses application/x-www-form-urlencoded bodies up to limit
// bytes into flat key/value lists. Bracketed keys are not expanded.
func URLEncoded(limit int64, onError ErrorResponder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasMediaType(r, "application/x-www-form-urlencoded") || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			r.Body.Close()
			if err != nil {
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					onError(w, r, err)
					return
				}
				onError(w, r, apperrors.ErrInvalidRequest.Wrap(err))
				return
			}

			values, err := url.ParseQuery(string(raw))
			if err != nil {
				onError(w, r, apperrors.ErrMalformedForm.Wrap(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formKey, values)))
		})
	}
}

// FormFrom returns the body parsed by URLEncoded.
func FormFrom(ctx context.Context) url.Values {
	values, _ := ctx.Value(formKey).(url.Values)
	return values
}

func hasMediaType(r *http.Request, want string) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	if mediaType == want {
		return true
	}
	// application/*+json is treated as JSON.
	return want == "application/json" && strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
