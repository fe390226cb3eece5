package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

const (
	// MsgTooManyAttempts - сообщение при превышении лимита попыток.
	MsgTooManyAttempts = "Too many attempts"

	// Клиенты без обращений дольше clientTTL забываются.
	clientTTL = 10 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PinThrottle ограничивает число попыток проверки PIN-кода с одного адреса.
type PinThrottle struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	lastPurge time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// NewPinThrottle создает ограничитель: perMinute попыток в минуту на адрес.
// perMinute <= 0 отключает ограничение.
func NewPinThrottle(perMinute int, logger *zap.Logger) *PinThrottle {
	t := &PinThrottle{
		clients: make(map[string]*client),
		burst:   perMinute,
		now:     time.Now,
		logger:  logger.Named("PinThrottle"),
	}
	if perMinute > 0 {
		t.limit = rate.Limit(float64(perMinute) / time.Minute.Seconds())
	}
	return t
}

// Handler возвращает middleware ограничения.
func (t *PinThrottle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.burst <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := clientKey(r)
		if !t.allow(key) {
			t.logger.Warn("Превышен лимит попыток проверки PIN", zap.String("client", key))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(models.PinResult{Message: MsgTooManyAttempts})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *PinThrottle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastPurge) > clientTTL {
		for k, c := range t.clients {
			if now.Sub(c.lastSeen) > clientTTL {
				delete(t.clients, k)
			}
		}
		t.lastPurge = now
	}

	c, ok := t.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// clientKey возвращает адрес клиента без порта.
// Заголовки прокси учитываются middleware.RealIP, который стоит раньше в цепочке.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
