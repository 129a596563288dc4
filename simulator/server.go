package simulator

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oots-bridge/evidence-contract-tests/framework"
)

const defaultSubjectID = "999990011"

// Server is the simulator HTTP service. All of its mutable state lives in
// the behavior store; everything else is per-request.
type Server struct {
	behaviors *BehaviorStore
	client    *http.Client
	logger    framework.Logger
	metrics   serverMetrics
	registry  *prometheus.Registry
}

type serverMetrics struct {
	invocations      *prometheus.CounterVec
	callbackFailures prometheus.Counter
}

func NewServer(logger framework.Logger) *Server {
	if logger == nil {
		logger = framework.NullLogger()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		behaviors: NewBehaviorStore(),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
		registry:  registry,
		metrics: serverMetrics{
			invocations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "simulator_invocations_total",
				Help: "Redirect invocations handled, by behavior mode.",
			}, []string{"behavior"}),
			callbackFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "simulator_callback_failures_total",
				Help: "Outbound callbacks that could not be delivered.",
			}),
		},
	}
}

// Behaviors exposes the store, mainly for tests.
func (s *Server) Behaviors() *BehaviorStore { return s.behaviors }

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/test/behavior", s.postBehavior)
	r.GET("/test/config", s.getConfig)
	r.GET("/health", s.getHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET("/redirect-entry", s.redirectEntry)
	r.POST("/redirect-entry", s.redirectEntry)

	return r
}

type behaviorRequest struct {
	Behavior        string `json:"behavior"`
	ResponseDelayMS int    `json:"responseDelayMs"`
	SessionID       string `json:"sessionId,omitempty"`
}

type behaviorResponse struct {
	Behavior        string `json:"behavior"`
	ResponseDelayMS int    `json:"responseDelayMs"`
}

func (s *Server) postBehavior(c *gin.Context) {
	var req behaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	behavior, ok := ParseBehavior(req.Behavior)
	if !ok {
		accepted := make([]string, 0, len(AllBehaviors()))
		for _, b := range AllBehaviors() {
			accepted = append(accepted, string(b))
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    fmt.Sprintf("unknown behavior %q", req.Behavior),
			"accepted": accepted,
		})
		return
	}

	cfg := BehaviorConfig{
		Behavior:      behavior,
		ResponseDelay: time.Duration(req.ResponseDelayMS) * time.Millisecond,
	}
	if req.SessionID != "" {
		s.behaviors.SetForSession(req.SessionID, cfg)
	} else {
		cfg = s.behaviors.Set(cfg)
	}
	s.logger.Printf("behavior set to %s (delay %s, session %q)", cfg.Behavior, cfg.ResponseDelay, req.SessionID)

	c.JSON(http.StatusOK, behaviorResponse{
		Behavior:        string(cfg.Behavior),
		ResponseDelayMS: int(cfg.ResponseDelay / time.Millisecond),
	})
}

func (s *Server) getConfig(c *gin.Context) {
	cfg := s.behaviors.Current()
	c.JSON(http.StatusOK, behaviorResponse{
		Behavior:        string(cfg.Behavior),
		ResponseDelayMS: int(cfg.ResponseDelay / time.Millisecond),
	})
}

func (s *Server) getHealth(c *gin.Context) {
	cfg := s.behaviors.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"behavior":        string(cfg.Behavior),
		"responseDelayMs": int(cfg.ResponseDelay / time.Millisecond),
	})
}

// redirectEntry is the participant-facing endpoint: the bridge redirects
// the citizen here, and the side effect is exactly one outbound callback
// to the caller-supplied return address (except in timeout mode).
func (s *Server) redirectEntry(c *gin.Context) {
	sessionID := c.Query("sessionId")
	returnURL := c.Query("returnUrl")
	if sessionID == "" || returnURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and returnUrl are required"})
		return
	}
	subjectID := c.Query("subject")
	if subjectID == "" {
		subjectID = defaultSubjectID
	}

	cfg := s.behaviors.Get(sessionID)
	s.metrics.invocations.WithLabelValues(string(cfg.Behavior)).Inc()
	s.logger.Printf("redirect invoked: session %s, behavior %s", sessionID, cfg.Behavior)

	if cfg.Behavior == BehaviorTimeout {
		// Simulate total unavailability: no callback, no response. The
		// caller owns the timeout; we hold the request open until it
		// gives up.
		s.logger.Printf("timeout mode: holding session %s open", sessionID)
		<-c.Request.Context().Done()
		return
	}

	if cfg.ResponseDelay > 0 {
		select {
		case <-time.After(cfg.ResponseDelay):
		case <-c.Request.Context().Done():
			return
		}
	}

	result, err := SynthesizeResult(cfg.Behavior, subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.deliverCallback(c.Request.Context(), returnURL, sessionID, result); err != nil {
		// A failed callback is a failed invocation, but never fatal to
		// the simulator process.
		s.metrics.callbackFailures.Inc()
		s.logger.Printf("callback to %s failed: %s", returnURL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("callback failed: %s", err)})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(ackPage(sessionID, result.Code)))
}

func ackPage(sessionID string, code ReturnCode) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>Data Provider Simulator</title></head><body>")
	b.WriteString("<h1>Evidence flow completed</h1>")
	fmt.Fprintf(&b, "<p>Session %s finished with result %s.</p>", sessionID, code)
	b.WriteString("<p>You may close this window.</p></body></html>")
	return b.String()
}
