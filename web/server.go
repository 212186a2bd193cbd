package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"

	"github.com/marcus-crane/curator/db"
	"github.com/marcus-crane/curator/models"
	"github.com/marcus-crane/curator/recommend"
)

const (
	RatingsStream = "ratings"
	todayLimit    = 20
)

//go:embed templates/*.html
var templateFS embed.FS

type Ranker interface {
	Rank() ([]recommend.Recommendation, error)
}

type Server struct {
	Store       db.Store
	Ranker      Ranker
	Events      *sse.Server
	CorsOrigins []string
	Now         func() time.Time

	templates *template.Template
}

type recommendationResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
}

type ratingEvent struct {
	ItemID string `json:"item_id"`
	Score  int    `json:"score"`
}

func NewServer(store db.Store, ranker Ranker, corsOrigins []string) *Server {
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(RatingsStream)

	return &Server{
		Store:       store,
		Ranker:      ranker,
		Events:      events,
		CorsOrigins: corsOrigins,
		Now:         time.Now,
		templates:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderJSONMessage(w http.ResponseWriter, status int, message string) {
	renderJSON(w, status, map[string]string{"message": message})
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /rate/{id}/{score}", s.handleRate)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /events", s.Events.ServeHTTP)
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.CorsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "HX-Request", "HX-Target", "HX-Current-URL"},
	})

	return c.Handler(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.ListItemsAddedOn(s.Now(), todayLimit)
	if err != nil {
		slog.Error("Failed to list today's items", slog.String("stack", err.Error()))
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return
	}

	scores := []int{}
	for score := models.MinScore; score <= models.MaxScore; score++ {
		scores = append(scores, score)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.templates.ExecuteTemplate(w, "index.html", map[string]any{
		"Items":  items,
		"Scores": scores,
	})
	if err != nil {
		slog.Error("Failed to render index", slog.String("stack", err.Error()))
	}
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	score, err := strconv.Atoi(r.PathValue("score"))
	if err != nil {
		http.Error(w, "score must be a whole number", http.StatusBadRequest)
		return
	}
	if err := models.ValidateScore(score); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := s.Store.GetItem(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("Failed to look up item", slog.String("id", id), slog.String("stack", err.Error()))
		http.Error(w, "failed to record rating", http.StatusInternalServerError)
		return
	}

	if err := s.Store.RecordRating(models.Rating{ItemID: id, Score: score}); err != nil {
		slog.Error("Failed to record rating", slog.String("id", id), slog.String("stack", err.Error()))
		http.Error(w, "failed to record rating", http.StatusInternalServerError)
		return
	}

	if data, err := json.Marshal(ratingEvent{ItemID: id, Score: score}); err == nil {
		s.Events.Publish(RatingsStream, &sse.Event{Data: data})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "rated_fragment.html", map[string]any{"Score": score}); err != nil {
		slog.Error("Failed to render rating", slog.String("stack", err.Error()))
	}
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			renderJSONMessage(w, http.StatusBadRequest, "n must be a whole number")
			return
		}
		n = parsed
	}

	response := []recommendationResponse{}
	if n <= 0 {
		renderJSON(w, http.StatusOK, response)
		return
	}

	ranked, err := s.Ranker.Rank()
	if err != nil {
		slog.Error("Failed to rank items", slog.String("stack", err.Error()))
		renderJSONMessage(w, http.StatusInternalServerError, "failed to compute recommendations")
		return
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	for _, rec := range ranked[:n] {
		response = append(response, recommendationResponse{
			ID:          rec.Item.ID,
			Title:       rec.Item.Title,
			Description: rec.Item.Description,
			Duration:    rec.Item.Duration,
			URL:         rec.Item.URL,
			Score:       rec.Score,
		})
	}
	renderJSON(w, http.StatusOK, response)
}

// ListenAndServe blocks until ctx is cancelled or the listener fails
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	slog.Info("Curator is running", slog.String("addr", addr))

	select {
	case err := <-errs:
		s.Events.Close()
		return err
	case <-ctx.Done():
		s.Events.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
