// Package api
package api

import (
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	"github.com/daoforge/governor-backend/cfg"
)

// EchoServer define all API expose
type EchoServer interface {
	Ping(c echo.Context) error
	Status(c echo.Context) error

	// Proposals
	Proposals(c echo.Context) error
	Proposal(c echo.Context) error
	Tally(c echo.Context) error
	Eligibility(c echo.Context) error

	// Off-chain annotations
	Annotations(c echo.Context) error
	UpsertAnnotation(c echo.Context) error
	DeleteAnnotation(c echo.Context) error

	// Post-action convergence trigger
	Refresh(c echo.Context) error
}

func bind(gr *echo.Group, srv EchoServer) {
	gr.GET("/ping", srv.Ping)
	gr.GET("/status", srv.Status)

	gr.GET("/proposals", srv.Proposals)
	gr.GET("/proposals/:id", srv.Proposal)
	gr.GET("/proposals/:id/tally", srv.Tally)
	gr.GET("/proposals/:id/eligibility", srv.Eligibility)

	gr.GET("/proposals/:id/annotations", srv.Annotations)
	gr.POST("/proposals/:id/annotations", srv.UpsertAnnotation)
	gr.DELETE("/proposals/:id/annotations/:key", srv.DeleteAnnotation)

	gr.POST("/refresh", srv.Refresh)
}

func Start(e *echo.Echo, srv EchoServer, cfg cfg.Config) {
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Gzip())

	v1Gr := e.Group("/api/v1")
	bind(v1Gr, srv)

	if err := e.Start(cfg.Port); err != nil {
		panic("cannot start echo server")
	}
}
