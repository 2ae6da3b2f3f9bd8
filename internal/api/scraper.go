package api

import (
	"net/http"
	"strings"
)

// handleRetailers lists the retailer keys available for live searches
func (s *Server) handleRetailers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"retailers": s.searcher.SupportedRetailers(),
	})
}

// handleProductPrice fetches the current price of one product page on one
// retailer, without storing it
func (s *Server) handleProductPrice(w http.ResponseWriter, r *http.Request) {
	retailer := r.URL.Query().Get("retailer")
	productURL := r.URL.Query().Get("url")
	if retailer == "" || productURL == "" {
		respondError(w, http.StatusBadRequest, "retailer and url parameters are required")
		return
	}

	rec, err := s.searcher.ProductPrice(r.Context(), retailer, productURL)
	if err != nil {
		respondFromError(w, err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "no price found on page")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleLiveSearch runs a live search preview across retailers without
// storing anything. An optional comma-separated "retailers" parameter
// narrows the search.
func (s *Server) handleLiveSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		respondError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	results, err := s.searcher.SearchAllRetailers(r.Context(), query, r.URL.Query().Get("category"), retailerParam(r))
	if err != nil {
		respondFromError(w, err)
		return
	}

	total := 0
	for _, records := range results {
		total += len(records)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"total":   total,
		"results": results,
	})
}
