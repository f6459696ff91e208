// internal/app/features/workflow/handler.go
package workflow

import (
	"github.com/thesistrack/thesistrack/internal/app/system/approval"
	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Engine *fanout.Engine
	Router *approval.Router
}

// NewHandler constructs a workflow feature handler. The engine performs
// ledger appends plus notification fan-out; the router drives the
// sequential review chains on top of it.
func NewHandler(db *mongo.Database, engine *fanout.Engine, router *approval.Router, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Engine: engine, Router: router}
}
