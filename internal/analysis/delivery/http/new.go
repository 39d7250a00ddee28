package http

import (
	"github.com/gin-gonic/gin"

	"data-analyst-agent/internal/session"
	pkgLog "data-analyst-agent/pkg/log"
)

// Handler exposes the analysis API over HTTP.
type Handler interface {
	CreateSession(c *gin.Context)
	DeleteSession(c *gin.Context)
	UploadDataset(c *gin.Context)
	GetSchema(c *gin.Context)
	Preview(c *gin.Context)
	Ask(c *gin.Context)
	History(c *gin.Context)
	ClearConversation(c *gin.Context)
}

type handler struct {
	l              pkgLog.Logger
	sessions       *session.Manager
	maxUploadBytes int64
}

// New builds the analysis handler. maxUploadBytes bounds how much of an
// uploaded file is read into memory before the dataset size check runs.
func New(l pkgLog.Logger, sessions *session.Manager, maxUploadBytes int64) Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &handler{l: l, sessions: sessions, maxUploadBytes: maxUploadBytes}
}
