package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stafflink/core/internal/pkg/response"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence prevents duplicate non-GET requests from double-applying
// within a short window. Login is exempt (retrying a login must stay
// possible).
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if strings.HasSuffix(strings.TrimRight(c.Request.URL.Path, "/"), "/login") {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := fmt.Sprintf("sl:idempotence:%s", key)
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "Duplicate request (already applied)"
			if val == "0" {
				msg = "Duplicate request (still processing)"
			}
			response.Conflict(c, msg)
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	ua := c.Request.UserAgent()
	ip := c.ClientIP()
	token := resolveIdempotenceSessionToken(c)

	if len(body) == 0 && ua == "" && ip == "" && token == "" {
		return "", nil
	}

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" + ua + "|" + ip + "|" + token
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}

func resolveIdempotenceSessionToken(c *gin.Context) string {
	if raw, err := c.Cookie("session_token"); err == nil {
		return strings.TrimSpace(raw)
	}
	if token := NormalizeToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	return ""
}
