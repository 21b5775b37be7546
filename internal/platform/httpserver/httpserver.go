package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Uploads carry up to four 5MB documents encoded
// as base64, so reads get more room than headers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
