package handler

import (
	"log/slog"
	"net/http"
)

// Hello answers GET / with a plain-text greeting.
func Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Hello World =]")); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
