package router

import (
	"net/http"

	"github.com/bts-green-line/explorer/internal/api/event"
	"github.com/bts-green-line/explorer/internal/api/place"
	"github.com/bts-green-line/explorer/internal/api/review"
	"github.com/bts-green-line/explorer/internal/api/station"
	"github.com/bts-green-line/explorer/internal/api/upload"
	"github.com/bts-green-line/explorer/internal/broadcast"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config contains the dependencies needed for router setup. Server-wide
// middleware (logger, requestID, recoverer) are applied before mounting this
// router in main.go.
type Config struct {
	StationHandler *station.Handler
	PlaceHandler   *place.Handler
	ReviewHandler  *review.Handler
	EventHandler   *event.Handler
	UploadHandler  *upload.Handler
	Hub            *broadcast.Hub
	AllowedOrigins []string
	UploadDir      string
}

// SetupRouter wires every endpoint of the explorer API.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Real-time channel: one global fan-out, no per-client filtering.
	r.Get("/ws", cfg.Hub.ServeWS)

	// Uploaded assets must be immediately fetchable at the returned URL.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", cfg.StationHandler.GetStations)

		r.Get("/places", cfg.PlaceHandler.GetAllPlaces)
		r.Post("/places", cfg.PlaceHandler.CreatePlace)
		r.Post("/places/add", cfg.PlaceHandler.CreatePlace)
		// chi requires one wildcard name per segment: {id} is a station code
		// on GET and a place id on the mutation routes.
		r.Get("/places/{id}", cfg.PlaceHandler.GetPlacesByStation)
		r.Put("/places/{id}", cfg.PlaceHandler.UpdatePlace)
		r.Delete("/places/{id}", cfg.PlaceHandler.DeletePlace)
		r.Post("/places/{id}/reviews", cfg.ReviewHandler.AddReview)

		r.Get("/reviews/place/{placeID}", cfg.ReviewHandler.GetReviewsForPlace)
		r.Delete("/reviews/{id}", cfg.ReviewHandler.DeleteReview)

		r.Get("/events", cfg.EventHandler.GetEvents)
		r.Post("/events", cfg.EventHandler.CreateEvent)
		r.Post("/events/add", cfg.EventHandler.CreateEvent)
		r.Put("/events/{id}", cfg.EventHandler.UpdateEvent)
		r.Delete("/events/{id}", cfg.EventHandler.DeleteEvent)

		r.Post("/upload", cfg.UploadHandler.UploadSingle)
		r.Post("/upload-gallery", cfg.UploadHandler.UploadGallery)
	})

	return r
}
