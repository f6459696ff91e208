// internal/app/features/health/health.go
package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thesistrack/thesistrack/internal/app/features/respond"
	"github.com/thesistrack/thesistrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeHealth)
	return r
}

// ServeHealth handles GET /healthz - liveness plus a database ping.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "health ping")
	defer cancel()

	if err := h.DB.Client().Ping(ctx, nil); err != nil {
		h.Log.Warn("health check database ping failed", zap.Error(err))
		respond.JSON(w, h.Log, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, map[string]string{"status": "ok"})
}
