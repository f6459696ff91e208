// internal/app/features/notifications/handler.go
package notifications

import (
	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Builder *auditctx.Builder
}

// NewHandler constructs a notifications feature handler bound to the
// given Mongo database and logger.
func NewHandler(db *mongo.Database, builder *auditctx.Builder, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Builder: builder}
}
