/**
 * @description
 * This file contains the JSON handlers for the registration wizard. Each handler
 * resolves the caller's wizard session, calls the form state controller and
 * writes the resulting state.
 */
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/render"
	"github.com/sohamda/fantasy-football/internal/session"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

// Handler serves the wizard over HTTP.
type Handler struct {
	sessions      *session.Manager
	signer        *session.TokenSigner
	catalog       *catalog.Catalog
	limiter       SubmitLimiter
	secureCookies bool
	logger        *slog.Logger
}

// HandlerConfig collects the Handler's dependencies.
type HandlerConfig struct {
	Sessions      *session.Manager
	Signer        *session.TokenSigner
	Catalog       *catalog.Catalog
	Limiter       SubmitLimiter
	SecureCookies bool
	Logger        *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:      cfg.Sessions,
		signer:        cfg.Signer,
		catalog:       cfg.Catalog,
		limiter:       cfg.Limiter,
		secureCookies: cfg.SecureCookies,
		logger:        logger,
	}
}

// draftView is the draft as exposed to clients. Passwords never leave the server.
type draftView struct {
	Email                 string `json:"email"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	PasswordSet           bool   `json:"passwordSet"`
	SelectedPlanID        string `json:"selectedPlanId,omitempty"`
	AgreeToTerms          bool   `json:"agreeToTerms"`
	SubscribeToNewsletter bool   `json:"subscribeToNewsletter"`
}

type wizardResponse struct {
	wizard.State
	Draft  draftView      `json:"draft"`
	Toasts []domain.Toast `json:"toasts"`
}

type errorResponse struct {
	Error  string          `json:"error"`
	Wizard *wizardResponse `json:"wizard,omitempty"`
}

type sessionResponse struct {
	Token  string         `json:"token"`
	Wizard wizardResponse `json:"wizard"`
}

func newWizardResponse(s *session.Session) wizardResponse {
	state := s.Controller.Snapshot()
	d := state.Draft
	return wizardResponse{
		State: state,
		Draft: draftView{
			Email:                 d.Email,
			FirstName:             d.FirstName,
			LastName:              d.LastName,
			PasswordSet:           d.Password != "",
			SelectedPlanID:        d.SelectedPlanID,
			AgreeToTerms:          d.AgreeToTerms,
			SubscribeToNewsletter: d.SubscribeToNewsletter,
		},
		Toasts: s.Toasts.Visible(),
	}
}

// startSession creates a session and hands its token to the client.
func (h *Handler) startSession(w http.ResponseWriter) (*session.Session, string, error) {
	s := h.sessions.Create()
	token, err := h.signer.Issue(s.ID)
	if err != nil {
		h.sessions.End(s.ID)
		return nil, "", err
	}
	sessionsStartedTotal.Inc()
	h.setSessionCookie(w, token)
	return s, token, nil
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.catalog.ListPlans())
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.catalog.FindPlan(chi.URLParam(r, "planID"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "plan not found")
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s, token, err := h.startSession(w)
	if err != nil {
		h.logger.Error("failed to start wizard session", "error", err)
		respondWithError(w, http.StatusInternalServerError, "could not start wizard session")
		return
	}
	respondWithJSON(w, http.StatusCreated, sessionResponse{Token: token, Wizard: newWizardResponse(s)})
}

func (h *Handler) handleGetWizard(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, newWizardResponse(s))
}

func (h *Handler) handleGetView(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	state := s.Controller.Snapshot()
	respondWithJSON(w, http.StatusOK, render.Render(state.Step, state.Draft, state.Errors, h.catalog))
}

// handleUpdateFields applies a JSON object of field name to value.
func (h *Handler) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())

	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[domain.Field]interface{}, len(req))
	for name, value := range req {
		field, err := domain.ParseField(name)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		fields[field] = value
	}
	if err := s.Controller.UpdateFields(fields); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newWizardResponse(s))
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	err := s.Controller.GoToNextStep()
	h.respondWithOutcome(w, s, err, http.StatusOK)
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	s.Controller.GoToPreviousStep()
	respondWithJSON(w, http.StatusOK, newWizardResponse(s))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	_, err := s.Controller.Submit(r.Context())
	h.respondWithOutcome(w, s, err, http.StatusAccepted)
}

func (h *Handler) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "toastID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid toast id")
		return
	}
	if !s.Toasts.Dismiss(id) {
		respondWithError(w, http.StatusNotFound, "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s, _ := SessionFromContext(r.Context())
	h.sessions.End(s.ID)
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// respondWithOutcome maps controller errors to status codes and always includes the state.
func (h *Handler) respondWithOutcome(w http.ResponseWriter, s *session.Session, err error, okStatus int) {
	resp := newWizardResponse(s)
	if err == nil {
		respondWithJSON(w, okStatus, resp)
		return
	}

	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("wizard operation failed", "session_id", s.ID, "error", err)
	}
	respondWithJSON(w, status, errorResponse{Error: err.Error(), Wizard: &resp})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, wizard.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrPlanNotSelected),
		errors.Is(err, wizard.ErrNotAtConfirmation),
		errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrInvalidFieldValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}
