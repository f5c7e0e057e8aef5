// Package http serves the insight relay: it accepts {prompt} from the
// front end and forwards it to a chat-completion provider that holds the
// API key server side.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneymanager/internal/completion"
	"moneymanager/internal/log"
	"moneymanager/internal/middleware/ratelimit"
	"moneymanager/internal/middleware/security"
	"moneymanager/internal/middleware/trace"
)

// Config holds relay server settings.
type Config struct {
	Addr string
	// RateLimit is the number of analyze requests allowed per client per minute.
	RateLimit    int
	AllowOrigins []string
	// MaxBodyBytes caps the analyze request body.
	MaxBodyBytes int64
}

type Server struct {
	http.Server
	completer    completion.Completer
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	metrics      *Metrics
	logger       *log.Logger
	maxBody      int64
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a server ready for
// ListenAndServe.
func NewServer(cfg Config, completer completion.Completer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 256 << 10
	}

	s := &Server{
		completer: completer,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{Requests: cfg.RateLimit, Window: time.Minute}),
		detector:  security.NewDetector(),
		metrics:   NewMetrics(),
		logger:    logger.WithComponent(log.ComponentRelay),
		maxBody:   cfg.MaxBodyBytes,
	}

	analyze := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(http.HandlerFunc(s.handleAnalyze))

	mux := http.NewServeMux()
	mux.Handle("/api/analyze", analyze)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.Handle("/metrics", s.metrics.Handler())

	var handler http.Handler = mux
	handler = trace.NewMiddleware(logger, s.detector.ExtractClientIP, s.metrics.observeRequest).Middleware(handler)
	handler = s.detector.Middleware(s.onSuspicious)(handler)
	handler = security.CORS(security.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", trace.RequestIDHeader},
		MaxAge:       600,
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.metrics.rateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

func (s *Server) onSuspicious(r *http.Request) {
	s.metrics.suspicious.Inc()
	s.logger.Warn("Suspicious request",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
