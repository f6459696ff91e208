// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification routes under the path where this
// router is mounted (typically "/users/{userID}/notifications" from
// bootstrap). The viewer is the {userID} path parameter; routing does
// not authenticate, it only scopes every query to that user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/unread-count", h.ServeUnreadCount)
	r.Get("/stream", h.ServeStream)
	r.Get("/snackbars", h.ServeSnackbars)

	r.Post("/read", h.ServeMarkRead)
	r.Post("/page-viewed", h.ServeMarkPageViewed)
	r.Post("/snackbar-shown", h.ServeMarkSnackbarShown)
	r.Post("/segment-viewed", h.ServeMarkSegmentViewed)

	return r
}
