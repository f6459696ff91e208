// internal/app/features/activity/routes.go
package activity

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the group activity routes under the path where this
// router is mounted (typically "/groups/{groupID}/audits" from
// bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/stream", h.ServeStream)

	return r
}
