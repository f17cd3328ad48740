package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "auctionserver/internal/errors"
	"auctionserver/internal/shared/testutil"
)

func newResponder(t *testing.T) ErrorResponder {
	logger, _ := testutil.NewTestLogger(t)
	return apperrors.NewErrorHandler(logger, false).HandleError
}

func TestJSONBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		limit       int64
		wantStatus  int
		wantNext    bool
		wantParsed  bool
	}{
		{
			name:        "object is parsed",
			contentType: "application/json",
			body:        `{"title":"lamp","price":12}`,
			limit:       1024,
			wantStatus:  http.StatusOK,
			wantNext:    true,
			wantParsed:  true,
		},
		{
			name:        "charset parameter is accepted",
			contentType: "application/json; charset=utf-8",
			body:        `[1,2,3]`,
			limit:       1024,
			wantStatus:  http.StatusOK,
			wantNext:    true,
			wantParsed:  true,
		},
		{
			name:        "vendor json suffix",
			contentType: "application/merge-patch+json",
			body:        `{"a":1}`,
			limit:       1024,
			wantStatus:  http.StatusOK,
			wantNext:    true,
			wantParsed:  true,
		},
		{
			name:        "malformed document",
			contentType: "application/json",
			body:        `{"title":`,
			limit:       1024,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "top-level scalar rejected",
			contentType: "application/json",
			body:        `"just a string"`,
			limit:       1024,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "body over limit",
			contentType: "application/json",
			body:        `{"data":"` + strings.Repeat("x", 64) + `"}`,
			limit:       16,
			wantStatus:  http.StatusRequestEntityTooLarge,
		},
		{
			name:        "other content type untouched",
			contentType: "text/plain",
			body:        `{not json`,
			limit:       1024,
			wantStatus:  http.StatusOK,
			wantNext:    true,
		},
		{
			name:        "empty json body",
			contentType: "application/json",
			body:        "",
			limit:       1024,
			wantStatus:  http.StatusOK,
			wantNext:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			parsed := false
			var rest []byte
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				_, parsed = JSONBodyFrom(r.Context())
				rest, _ = io.ReadAll(r.Body)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			JSONBody(tt.limit, newResponder(t))(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
			assert.Equal(t, tt.wantParsed, parsed)
			if tt.wantNext {
				assert.Equal(t, tt.body, string(rest), "body must stay readable downstream")
			} else {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	var got struct {
		Title string `json:"title"`
	}
	var decodeErr error
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodeErr = DecodeJSONBody(r, &got)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"vase"}`))
	req.Header.Set("Content-Type", "application/json")
	JSONBody(1024, newResponder(t))(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, decodeErr)
	assert.Equal(t, "vase", got.Title)

	bare := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.ErrorIs(t, DecodeJSONBody(bare, &got), apperrors.ErrInvalidRequest)
}

func TestCookies(t *testing.T) {
	var parsed map[string]string
	var token string
	var hasToken bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parsed = CookiesFrom(r.Context())
		token, hasToken = CookieValue(r.Context(), "token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "token=abc; theme=dark; token=second")
	Cookies(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, map[string]string{"token": "abc", "theme": "dark"}, parsed)
	assert.True(t, hasToken)
	assert.Equal(t, "abc", token)

	t.Run("no cookie header", func(t *testing.T) {
		Cookies(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, parsed)
		assert.False(t, hasToken)
	})
}

func TestURLEncoded(t *testing.T) {
	t.Run("flat form parsed", func(t *testing.T) {
		var form map[string][]string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			form = FormFrom(r.Context())
		})

		req := httptest.NewRequest(http.MethodPost, "/api/bidding", strings.NewReader("price=20&item[name]=lamp"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		URLEncoded(1024, newResponder(t))(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"20"}, form["price"])
		assert.Equal(t, []string{"lamp"}, form["item[name]"], "bracketed keys stay flat")
	})

	t.Run("bad escape rejected", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("price=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		URLEncoded(1024, newResponder(t))(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, called)
	})

	t.Run("json request skipped", func(t *testing.T) {
		var form map[string][]string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			form = FormFrom(r.Context())
		})

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		URLEncoded(1024, newResponder(t))(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.Nil(t, form)
	})
}
