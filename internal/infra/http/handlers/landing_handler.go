package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var landingPage []byte

func HandleLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(landingPage)
}
