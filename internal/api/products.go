package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"avasile/pricetracker/internal/scraper"
	"avasile/pricetracker/internal/store"
)

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	SKU         *string          `json:"sku"`
	ImageURL    string           `json:"image_url"`
	TargetPrice *decimal.Decimal `json:"target_price"`
	IsActive    *bool            `json:"is_active"`
}

func (pr *productRequest) validate() string {
	if strings.TrimSpace(pr.Name) == "" {
		return "name is required"
	}
	if pr.TargetPrice != nil && !pr.TargetPrice.IsPositive() {
		return "target_price must be positive"
	}
	return ""
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	product := &store.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
		TargetPrice: req.TargetPrice,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.products.Create(r.Context(), product); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(r, "limit", 50, 200)
	offset := queryInt(r, "offset", 0, 100000)
	activeOnly := q.Get("active") == "true"

	products, err := s.products.List(r.Context(), q.Get("category"), q.Get("brand"), activeOnly, limit, offset)
	if err != nil {
		respondFromError(w, err)
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		respondError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	products, err := s.products.Search(r.Context(), query, queryInt(r, "limit", 50, 200))
	if err != nil {
		respondFromError(w, err)
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := s.products.Get(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := s.products.Get(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Category = req.Category
	product.Brand = req.Brand
	product.SKU = req.SKU
	product.ImageURL = req.ImageURL
	product.TargetPrice = req.TargetPrice
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.products.Update(r.Context(), product); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		respondFromError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleScrapeProduct runs a live search for a tracked product, stores the
// results and returns them grouped by retailer. An optional comma-separated
// "retailers" parameter narrows the search.
func (s *Server) handleScrapeProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := s.products.Get(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}

	results, err := s.searcher.SearchAllRetailers(r.Context(), product.Name, product.Category, retailerParam(r))
	if err != nil {
		respondFromError(w, err)
		return
	}

	var records []scraper.PriceRecord
	for _, retailerRecords := range results {
		records = append(records, retailerRecords...)
	}

	saved := 0
	if len(records) > 0 {
		if saved, err = s.prices.SaveRecords(r.Context(), product.ID, records); err != nil {
			respondFromError(w, err)
			return
		}
		if s.pub != nil {
			if err := s.pub.PublishPrices(r.Context(), product.ID.String(), records); err != nil {
				s.log.Warn().Err(err).Str("product_id", product.ID.String()).Msg("Failed to publish prices")
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": product.ID,
		"saved":      saved,
		"results":    results,
	})
}

func (s *Server) handleLatestPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := s.products.Get(r.Context(), id); err != nil {
		respondFromError(w, err)
		return
	}

	prices, err := s.prices.LatestPrices(r.Context(), id)
	if err != nil {
		respondFromError(w, err)
		return
	}
	if prices == nil {
		prices = []store.Price{}
	}
	respondJSON(w, http.StatusOK, prices)
}

// retailerParam parses the optional comma-separated retailers filter
func retailerParam(r *http.Request) []string {
	raw := r.URL.Query().Get("retailers")
	if raw == "" {
		return nil
	}
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
