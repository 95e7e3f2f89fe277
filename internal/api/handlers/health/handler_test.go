package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

type fakeDB struct {
	err error
}

func (f fakeDB) PingContext(ctx context.Context) error {
	return f.err
}

type fakeCache struct {
	err error
}

func (f fakeCache) Ping(ctx context.Context) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func checkWith(t *testing.T, db fakeDB, cache fakeCache) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	NewHandler(db, cache).Check(c)
	return w
}

func TestHandler_Check_OK(t *testing.T) {
	w := checkWith(t, fakeDB{}, fakeCache{})

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandler_Check_DatabaseDown(t *testing.T) {
	w := checkWith(t, fakeDB{err: errors.New("connection refused")}, fakeCache{})

	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "database unreachable")
}

func TestHandler_Check_CacheDown(t *testing.T) {
	w := checkWith(t, fakeDB{}, fakeCache{err: errors.New("connection refused")})

	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "cache unreachable")
}
