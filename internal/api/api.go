package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"avasile/pricetracker/internal/scraper"
	"avasile/pricetracker/internal/store"
	"avasile/pricetracker/logger"
	"avasile/pricetracker/services/publisher"
)

// ProductStore is the product persistence surface the API needs
type ProductStore interface {
	Create(ctx context.Context, p *store.Product) error
	Get(ctx context.Context, id uuid.UUID) (*store.Product, error)
	List(ctx context.Context, category, brand string, activeOnly bool, limit, offset int) ([]store.Product, error)
	Search(ctx context.Context, query string, limit int) ([]store.Product, error)
	Update(ctx context.Context, p *store.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PriceStore is the price persistence surface the API needs
type PriceStore interface {
	SaveRecords(ctx context.Context, productID uuid.UUID, records []scraper.PriceRecord) (int, error)
	LatestPrices(ctx context.Context, productID uuid.UUID) ([]store.Price, error)
	History(ctx context.Context, productID uuid.UUID, days int, retailer string) ([]store.Price, error)
	PromotionalDeals(ctx context.Context, limit int) ([]store.Price, error)
}

// AlertStore is the alert persistence surface the API needs
type AlertStore interface {
	Create(ctx context.Context, a *store.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*store.Alert, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]store.Alert, error)
	ListByEmail(ctx context.Context, email string) ([]store.Alert, error)
	Update(ctx context.Context, a *store.Alert) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Searcher runs live searches across retailer scrapers
type Searcher interface {
	SearchAllRetailers(ctx context.Context, productName, category string, retailers []string) (map[string][]scraper.PriceRecord, error)
	ProductPrice(ctx context.Context, retailer, productURL string) (*scraper.PriceRecord, error)
	SupportedRetailers() []string
}

// Server holds the API handlers and their dependencies
type Server struct {
	products ProductStore
	prices   PriceStore
	alerts   AlertStore
	searcher Searcher
	pub      publisher.Publisher // may be nil
	log      *logger.Logger
}

// NewServer creates the API server. pub may be nil; scrape results are then
// stored but not published.
func NewServer(products ProductStore, prices PriceStore, alerts AlertStore, searcher Searcher, pub publisher.Publisher) *Server {
	return &Server{
		products: products,
		prices:   prices,
		alerts:   alerts,
		searcher: searcher,
		pub:      pub,
		log:      logger.ForComponent("api"),
	}
}

// Router builds the HTTP route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", s.handleCreateProduct)
			r.Get("/", s.handleListProducts)
			r.Get("/search", s.handleSearchProducts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProduct)
				r.Put("/", s.handleUpdateProduct)
				r.Delete("/", s.handleDeleteProduct)
				r.Post("/scrape", s.handleScrapeProduct)
				r.Get("/prices", s.handleLatestPrices)
			})
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/comparison/{productID}", s.handleComparison)
			r.Get("/history/{productID}", s.handleHistory)
			r.Get("/deals", s.handleDeals)
		})

		r.Route("/scraper", func(r chi.Router) {
			r.Get("/retailers", s.handleRetailers)
			r.Get("/search", s.handleLiveSearch)
			r.Get("/price", s.handleProductPrice)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.handleCreateAlert)
			r.Get("/", s.handleListAlerts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAlert)
				r.Put("/", s.handleUpdateAlert)
				r.Post("/deactivate", s.handleDeactivateAlert)
				r.Delete("/", s.handleDeleteAlert)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
