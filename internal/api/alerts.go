package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"avasile/pricetracker/internal/store"
)

type alertRequest struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Email       string          `json:"email"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

func (ar *alertRequest) validate() string {
	if ar.ProductID == uuid.Nil {
		return "product_id is required"
	}
	if !strings.Contains(ar.Email, "@") {
		return "a valid email is required"
	}
	if !ar.TargetPrice.IsPositive() {
		return "target_price must be positive"
	}
	return ""
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	// The product must exist before an alert can watch it.
	if _, err := s.products.Get(r.Context(), req.ProductID); err != nil {
		respondFromError(w, err)
		return
	}

	alert := &store.Alert{
		ProductID:   req.ProductID,
		Email:       req.Email,
		TargetPrice: req.TargetPrice,
	}
	if err := s.alerts.Create(r.Context(), alert); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

// handleListAlerts lists alerts by product_id or by email
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	var (
		alerts []store.Alert
		err    error
	)
	switch {
	case r.URL.Query().Get("product_id") != "":
		var productID uuid.UUID
		if productID, err = uuid.Parse(r.URL.Query().Get("product_id")); err != nil {
			respondError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		alerts, err = s.alerts.ListByProduct(r.Context(), productID)
	case r.URL.Query().Get("email") != "":
		alerts, err = s.alerts.ListByEmail(r.Context(), r.URL.Query().Get("email"))
	default:
		respondError(w, http.StatusBadRequest, "product_id or email parameter is required")
		return
	}
	if err != nil {
		respondFromError(w, err)
		return
	}
	if alerts == nil {
		alerts = []store.Alert{}
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := s.alerts.Get(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	var req struct {
		Email       string          `json:"email"`
		TargetPrice decimal.Decimal `json:"target_price"`
		Active      *bool           `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	alert, err := s.alerts.Get(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}

	if req.Email != "" {
		if !strings.Contains(req.Email, "@") {
			respondError(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		alert.Email = req.Email
	}
	if !req.TargetPrice.IsZero() {
		if !req.TargetPrice.IsPositive() {
			respondError(w, http.StatusBadRequest, "target_price must be positive")
			return
		}
		alert.TargetPrice = req.TargetPrice
	}
	if req.Active != nil {
		alert.Active = *req.Active
	}

	if err := s.alerts.Update(r.Context(), alert); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) handleDeactivateAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := s.alerts.Deactivate(r.Context(), id); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := s.alerts.Delete(r.Context(), id); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
