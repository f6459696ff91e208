// internal/app/features/workflow/routes.go
package workflow

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the workflow routes under the path where this router is
// mounted (typically "/groups/{groupID}" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/events", h.ServeRecordEvent)
	r.Post("/approvals/{chain}", h.ServeApprove)

	return r
}
