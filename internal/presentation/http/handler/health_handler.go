package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pinger reports whether a backing store is reachable
type Pinger func(ctx context.Context) error

// DBPinger pings the database behind a gorm handle
func DBPinger(db *gorm.DB) Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// RedisPinger pings a Redis client
func RedisPinger(rdb redis.UniversalClient) Pinger {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// Health checks DB and Redis connectivity without exposing connection details.
func Health(service string, db, cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if db(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if cache(ctx) != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"service": service,
			"db":      dbStatus,
			"redis":   redisStatus,
		})
	}
}
