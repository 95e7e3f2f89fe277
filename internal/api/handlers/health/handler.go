package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/api/respond"
)

const checkTimeout = 2 * time.Second

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Handler reports whether the registry database and the marker store are
// reachable.
type Handler struct {
	db    dbPinger
	cache cachePinger
}

func NewHandler(db dbPinger, cache cachePinger) *Handler {
	return &Handler{db: db, cache: cache}
}

// Check pings both backing services and answers 503 naming the first one
// that does not respond.
func (h *Handler) Check(c *ginext.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		zlog.Logger.Error().Err(err).Msg("health check: database unreachable")
		respond.Fail(c.Writer, http.StatusServiceUnavailable, fmt.Errorf("database unreachable"))
		return
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		zlog.Logger.Error().Err(err).Msg("health check: cache unreachable")
		respond.Fail(c.Writer, http.StatusServiceUnavailable, fmt.Errorf("cache unreachable"))
		return
	}

	respond.OK(c.Writer, map[string]string{"status": "ok"})
}
