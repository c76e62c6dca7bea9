package router

import "github.com/gin-gonic/gin"

// Module mounts one feature's routes on the /api group.
type Module interface {
	Register(api *gin.RouterGroup)
}

// Registry collects API-wide middleware and feature modules and mounts
// them under /api.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll applies middleware before any module route so every route
// sees it, then returns the engine's route table.
func (r *Registry) RegisterAll() gin.RoutesInfo {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	return r.Engine.Routes()
}
