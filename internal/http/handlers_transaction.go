package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// formView feeds transaction_form.html for both kinds and both modes.
type formView struct {
	Kind       core.Kind
	Action     string
	Heading    string
	Submit     string
	Input      core.TransactionInput
	Categories []string
}

func (s *Server) newForm(kind core.Kind) formView {
	return formView{
		Kind:       kind,
		Action:     "/add_" + kind.String(),
		Heading:    "Add " + kind.Title(),
		Submit:     "Add " + kind.Title(),
		Input:      core.TransactionInput{Date: core.DateOf(time.Now()).String()},
		Categories: s.categories.For(kind),
	}
}

func (s *Server) editForm(kind core.Kind, id int64, in core.TransactionInput) formView {
	return formView{
		Kind:       kind,
		Action:     "/edit_" + kind.String() + "/" + strconv.FormatInt(id, 10),
		Heading:    "Edit " + kind.Title(),
		Submit:     "Save changes",
		Input:      in,
		Categories: s.categories.For(kind),
	}
}

func (s *Server) handleAddForm(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := s.newForm(kind)
		s.render(w, r, http.StatusOK, "transaction_form.html", view.Heading, view)
	}
}

func (s *Server) handleAdd(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view := s.newForm(kind)
		if err := r.ParseForm(); err != nil {
			s.render(w, r, http.StatusBadRequest, "transaction_form.html", view.Heading, view,
				Flash{Category: FlashDanger, Message: "Invalid request"})
			return
		}
		view.Input = ParseTransactionForm(r.PostForm)

		userID, _ := auth.UserID(ctx)
		_, err := s.transactions.Add(ctx, userID, kind, view.Input)
		if err != nil {
			status, msg := s.mutationError(r, "adding", kind, err)
			s.render(w, r, status, "transaction_form.html", view.Heading, view,
				Flash{Category: FlashDanger, Message: msg})
			return
		}

		s.redirect(w, r, "/dashboard", Flash{Category: FlashSuccess, Message: kind.Title() + " added successfully!"})
	}
}

func (s *Server) handleEditForm(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserID(ctx)

		id, ok := pathID(r)
		if !ok {
			s.notFound(w, r, kind)
			return
		}
		tx, err := s.transactions.Get(ctx, userID, kind, id)
		if errors.Is(err, core.ErrNotFound) {
			s.notFound(w, r, kind)
			return
		}
		if err != nil {
			applog.FromContext(ctx).ErrorContext(ctx, "Failed to load record",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldKind, kind.String(),
				applog.FieldTransactionID, id,
				applog.FieldError, err)
			s.redirect(w, r, "/dashboard", Flash{Category: FlashDanger, Message: "Could not load " + kind.String() + ", please try again."})
			return
		}

		view := s.editForm(kind, id, core.FromTransaction(tx))
		s.render(w, r, http.StatusOK, "transaction_form.html", view.Heading, view)
	}
}

func (s *Server) handleEdit(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserID(ctx)

		id, ok := pathID(r)
		if !ok {
			s.notFound(w, r, kind)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.redirect(w, r, "/edit_"+kind.String()+"/"+strconv.FormatInt(id, 10),
				Flash{Category: FlashDanger, Message: "Invalid request"})
			return
		}
		view := s.editForm(kind, id, ParseTransactionForm(r.PostForm))

		_, err := s.transactions.Update(ctx, userID, kind, id, view.Input)
		if errors.Is(err, core.ErrNotFound) {
			s.notFound(w, r, kind)
			return
		}
		if err != nil {
			status, msg := s.mutationError(r, "updating", kind, err)
			s.render(w, r, status, "transaction_form.html", view.Heading, view,
				Flash{Category: FlashDanger, Message: msg})
			return
		}

		s.redirect(w, r, "/dashboard", Flash{Category: FlashSuccess, Message: kind.Title() + " updated successfully!"})
	}
}

// handleDelete answers with a JSON DeleteResult so the dashboard can remove
// the row without a reload.
func (s *Server) handleDelete(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, _ := auth.UserID(ctx)

		id, ok := pathID(r)
		if !ok {
			writeJSON(w, http.StatusNotFound, services.DeleteResult{Error: kind.Title() + " not found"})
			return
		}

		res, err := s.transactions.Delete(ctx, userID, kind, id)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, res)
		case errors.Is(err, core.ErrNotFound):
			writeJSON(w, http.StatusNotFound, res)
		case errors.Is(err, core.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, res)
		default:
			applog.FromContext(ctx).ErrorContext(ctx, "Delete failed",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldKind, kind.String(),
				applog.FieldTransactionID, id,
				applog.FieldError, err)
			writeJSON(w, http.StatusInternalServerError, res)
		}
	}
}

// notFound reports a missing or foreign record and returns to the dashboard.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, kind core.Kind) {
	s.redirect(w, r, "/dashboard", Flash{Category: FlashDanger, Message: kind.Title() + " not found!"})
}

// mutationError maps a failed add or update to a status and a flash message.
func (s *Server) mutationError(r *http.Request, verb string, kind core.Kind, err error) (int, string) {
	prefix := "Error " + verb + " " + kind.String() + ": "

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, prefix + verr.Error()
	}

	ctx := r.Context()
	applog.FromContext(ctx).ErrorContext(ctx, "Failed to save record",
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldKind, kind.String(),
		applog.FieldOperation, verb,
		applog.FieldError, err)
	return http.StatusInternalServerError, prefix + "please try again"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
