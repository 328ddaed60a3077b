package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/model"
	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// assessRequest is the assessment endpoint's input envelope.
type assessRequest struct {
	FinancialProfile models.FinancialProfile `json:"financial_profile"`
	LoanRequest      models.LoanRequest      `json:"loan_request"`
}

// Assess handles a full decision assessment
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.svc.Assess(r.Context(), req.FinancialProfile, req.LoanRequest)
	if err != nil {
		h.writeAssessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeAssessError maps pipeline errors onto HTTP statuses. Input problems
// are the caller's fault; schema and model problems are deployment faults
// and must surface loudly.
func (h *Handler) writeAssessError(w http.ResponseWriter, err error) {
	var invalidProfile *health.InvalidProfileError
	var invalidRequest *features.InvalidRequestError
	var schemaErr *features.FeatureSchemaError
	var modelErr *model.ModelUnavailableError
	switch {
	case errors.As(err, &invalidProfile), errors.As(err, &invalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &schemaErr):
		h.log.Errorf("Feature schema violation: %v", err)
		writeError(w, http.StatusInternalServerError, "feature schema violation")
	case errors.As(err, &modelErr):
		h.log.Errorf("Model unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "model unavailable")
	default:
		h.log.Errorf("Assessment failed: %v", err)
		writeError(w, http.StatusInternalServerError, "assessment failed")
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.log.Errorf("Registration failed: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Healthz reports process liveness
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
