package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/render"
	"github.com/sohamda/fantasy-football/internal/session"
)

const actionSelectPlan = "select-plan"

// pageSession resolves the browser's session, starting a new one when the cookie is
// missing or stale.
func (h *Handler) pageSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if s, err := h.lookupSession(r); err == nil {
		return s, nil
	}
	s, _, err := h.startSession(w)
	return s, err
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	s, err := h.pageSession(w, r)
	if err != nil {
		h.logger.Error("failed to start wizard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	state := s.Controller.Snapshot()
	page := render.Page{
		View:       render.Render(state.Step, state.Draft, state.Errors, h.catalog),
		Toasts:     s.Toasts.Visible(),
		Submitting: state.Submitting,
		Completed:  state.Completed,
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, page); err != nil {
		h.logger.Error("failed to render wizard page", "session_id", s.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handlePageAction applies the posted fields, then the requested action, and redirects
// back to the page. Validation outcomes are kept in the controller and shown on reload.
func (h *Handler) handlePageAction(w http.ResponseWriter, r *http.Request) {
	s, err := h.pageSession(w, r)
	if err != nil {
		h.logger.Error("failed to start wizard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	for name, values := range r.PostForm {
		field, err := domain.ParseField(name)
		if err != nil || len(values) == 0 {
			continue
		}
		// Checkboxes post a hidden "off" before the box itself, so the last value wins.
		value := values[len(values)-1]
		// Password inputs are never pre-filled, so an empty one means "unchanged".
		if (field == domain.FieldPassword || field == domain.FieldConfirmPassword) && value == "" {
			continue
		}
		if err := s.Controller.UpdateField(field, value); err != nil {
			h.logger.Warn("ignoring invalid form value", "session_id", s.ID, "field", field, "error", err)
		}
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		action = r.PostForm.Get("action")
	}
	switch action {
	case render.ActionNext:
		_ = s.Controller.GoToNextStep()
	case render.ActionPrevious:
		s.Controller.GoToPreviousStep()
	case render.ActionSubmit:
		if ok, retryAfter := h.allowSubmit(r.Context(), s); !ok {
			if _, err := s.Toasts.Post(fmt.Sprintf("Too many registration attempts. Please try again in %d seconds.", retryAfter), domain.SeverityWarning); err != nil {
				h.logger.Warn("could not post toast", "session_id", s.ID, "error", err)
			}
			break
		}
		if _, err := s.Controller.Submit(r.Context()); err != nil {
			h.logger.Info("submission not started", "session_id", s.ID, "reason", err)
		}
	case actionSelectPlan, "":
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handlePageDismissToast(w http.ResponseWriter, r *http.Request) {
	if s, err := h.lookupSession(r); err == nil {
		if id, err := strconv.ParseUint(chi.URLParam(r, "toastID"), 10, 64); err == nil {
			s.Toasts.Dismiss(id)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
