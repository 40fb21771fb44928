package internal

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/db"
	"github.com/huyblog/blogservice/pkg"
)

const (
	healthPingTimeout = 2 * time.Second
	isoTimestamp      = "2006-01-02T15:04:05.000Z"

	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// healthHandler always answers 200; the database state is informational.
func healthHandler(pinger db.Pinger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		database := DatabaseConnected
		if err := pinger.Ping(ctx); err != nil {
			log.Warnf("health: mongo ping: %s", err)
			database = DatabaseDisconnected
		}

		pkg.WriteJSONOK(w, HealthResponse{
			Status:    "ok",
			Database:  database,
			Timestamp: now().UTC().Format(isoTimestamp),
		})
	}
}
