package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/query-explorer/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// APIV1Prefix is the base path of the versioned JSON API.
const APIV1Prefix = "/api/v1"

// Deps carries what the routes need.
type Deps struct {
	Tables service.TableService
	// Ready lists the dependencies /ready must reach, by name.
	Ready          map[string]Pinger
	DefaultPerPage int
	Logger         zerolog.Logger
}

// NewRouter builds a gin engine with the middleware chain and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Logger))
	Register(r, d)
	return r
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, d Deps) {
	h := NewHealthHandler(d.Ready)
	tables := NewTableHandler(d.Tables, d.DefaultPerPage)

	// Health checks
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterDocs(r)
	tables.RegisterRoot(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		tables.Register(api)
	}
}
