package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter memberi token bucket terpisah untuk setiap key (user chat atau IP)
type KeyedRateLimiter struct {
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	lastSweep time.Time
	mu        sync.Mutex
	now       func() time.Time
}

// NewKeyedRateLimiter mengizinkan perMinute request per menit untuk setiap key
func NewKeyedRateLimiter(perMinute int, burst int) *KeyedRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &KeyedRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow melaporkan apakah request untuk key masih boleh diproses
func (rl *KeyedRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterIdleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Limit membatasi request berdasarkan key dari keyFunc
func (rl *KeyedRateLimiter) Limit(keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(keyFunc(c)) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "Terlalu banyak permintaan, silakan tunggu beberapa saat",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClientIPKey membatasi per alamat IP, dipakai untuk endpoint login
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ChatUserKey membatasi per user_id di body pesan chat. Body disimpan gin
// sehingga controller masih bisa membacanya lewat ShouldBindBodyWith.
func ChatUserKey(c *gin.Context) string {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil && body.UserID != "" {
		return "chat:" + body.UserID
	}
	return ClientIPKey(c)
}
