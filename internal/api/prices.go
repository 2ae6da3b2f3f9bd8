package api

import (
	"net/http"

	"avasile/pricetracker/internal/store"
)

// handleComparison returns cross-retailer statistics built from the latest
// observation per retailer
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := s.products.Get(r.Context(), productID); err != nil {
		respondFromError(w, err)
		return
	}

	prices, err := s.prices.LatestPrices(r.Context(), productID)
	if err != nil {
		respondFromError(w, err)
		return
	}

	cmp := store.BuildComparison(productID, prices)
	if cmp == nil {
		respondError(w, http.StatusNotFound, "no prices recorded for product")
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

// handleHistory returns the price history and trend over a day window.
// Optional parameters: days (default 30) and retailer.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := s.products.Get(r.Context(), productID); err != nil {
		respondFromError(w, err)
		return
	}

	days := queryInt(r, "days", 30, 365)
	prices, err := s.prices.History(r.Context(), productID, days, r.URL.Query().Get("retailer"))
	if err != nil {
		respondFromError(w, err)
		return
	}

	summary := store.BuildHistorySummary(productID, days, prices)
	if summary == nil {
		respondError(w, http.StatusNotFound, "no price history for product")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleDeals returns the latest promotional offers across all products
func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.prices.PromotionalDeals(r.Context(), queryInt(r, "limit", 20, 100))
	if err != nil {
		respondFromError(w, err)
		return
	}
	if deals == nil {
		deals = []store.Price{}
	}
	respondJSON(w, http.StatusOK, deals)
}
