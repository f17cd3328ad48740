package http

import (
	"io"
	"net/http"
)

// HomePage is the body of GET /.
const HomePage = "Home Page"

// Home handles GET /. It does not touch the database.
func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, HomePage)
}
