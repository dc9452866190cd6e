package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"weakness-analysis-service/internal/app"
	"weakness-analysis-service/internal/domain"
)

// ServiceName and ServiceVersion make up the root service descriptor.
const (
	ServiceName    = "User Weaknesses Analysis API"
	ServiceVersion = "1.0.0"
)

// Handler exposes the weakness analysis over HTTP.
type Handler struct {
	service *app.WeaknessService
}

func NewHandler(service *app.WeaknessService) *Handler {
	return &Handler{service: service}
}

// Routes registers all endpoints on a fresh mux, wrapped with CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.handleRoot)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /api/user/{userID}/weaknesses", h.handleUserWeaknesses)
	return withCORS(mux)
}

type serviceDescriptor struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// errorBody mirrors the `detail` error envelope existing clients parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, serviceDescriptor{Message: ServiceName, Version: ServiceVersion})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func (h *Handler) handleUserWeaknesses(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: "missing user id"})
		return
	}

	report, err := h.service.AnalyzeUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoTestResults) {
			writeJSON(w, http.StatusNotFound, errorBody{
				Detail: fmt.Sprintf("No onboarding test data found for user %s", userID),
			})
			return
		}
		log.Printf("weakness analysis failed for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Detail: fmt.Sprintf("Error analyzing user weaknesses: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
