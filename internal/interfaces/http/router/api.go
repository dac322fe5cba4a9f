package router

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/interfaces/http/handler"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served by the API
type Handlers struct {
	Stores  *handler.StoreHandler
	Orders  *handler.OrderHandler
	Labels  *handler.LabelHandler
	Summary *handler.SummaryHandler
	System  *handler.SystemHandler
	// Refresh is nil when the background refresh is disabled
	Refresh *handler.RefreshHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	// Meter records HTTP metrics; nil disables them
	Meter  metric.Meter
	Logger *zap.Logger
	// FetchLimiter guards the routes that call the marketplace; nil disables it
	FetchLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware stack and every route.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request id, tracing, recovery, logging, metrics, security, CORS, body limit.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: middleware.DefaultCORSConfig().ExposeHeaders,
		MaxAge:        12 * time.Hour,
	}))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)

	var fetchGuard []gin.HandlerFunc
	if cfg.FetchLimiter != nil {
		fetchGuard = append(fetchGuard, middleware.RateLimit(cfg.FetchLimiter))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(storeRoutes(h.Stores))
	r.Register(orderRoutes(h.Orders, h.Summary, h.Refresh, fetchGuard))
	r.Register(labelRoutes(h.Labels, fetchGuard))
	r.Register(systemRoutes(h.System))
	r.Setup()

	return engine
}

func guarded(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return slices.Concat(guard, []gin.HandlerFunc{h})
}

func storeRoutes(h *handler.StoreHandler) *DomainGroup {
	g := NewDomainGroup("stores", "/stores")
	g.GET("", h.List)
	g.PUT("", h.Replace)
	return g
}

func orderRoutes(h *handler.OrderHandler, s *handler.SummaryHandler, rh *handler.RefreshHandler, fetchGuard []gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("orders", "/orders")
	g.GET("", h.Snapshot)
	g.POST("/aggregate", guarded(fetchGuard, h.Aggregate)...)
	g.GET("/stats", h.Stats)
	g.GET("/groups", h.Groups)
	g.GET("/groups/export", h.Export)
	g.POST("/packed/toggle", h.TogglePacked)
	g.PUT("/packed", h.SetPacked)
	g.GET("/summary", s.Get)
	if rh != nil {
		g.GET("/refreshes", rh.List)
	}
	return g
}

func labelRoutes(h *handler.LabelHandler, fetchGuard []gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("labels", "/labels")
	g.POST("", guarded(fetchGuard, h.Print)...)
	return g
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	return g
}
