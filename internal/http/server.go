// Package http is the REST boundary.  Handlers translate tool Results into
// JSON responses; any panic or stray error is caught here so the core can
// keep returning typed results instead of raising.
package http

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"medicai/internal/agent"
	"medicai/internal/tools"
)

// Doctor identity threaded through agent calls made on behalf of the web
// UI.  The core treats it as opaque.
const (
	webDoctorID  = "WebDoctor"
	webSessionID = "web_session"
)

// Server bundles the dependencies the HTTP handlers need.
type Server struct {
	tools *tools.Toolset
	agent *agent.Agent
	log   zerolog.Logger
}

// NewServer constructs the Server and mounts all routes on a fresh echo
// instance.
func NewServer(ts *tools.Toolset, ag *agent.Agent, corsOrigins string, log zerolog.Logger) (*Server, *echo.Echo) {
	s := &Server{
		tools: ts,
		agent: ag,
		log:   log.With().Str("component", "http").Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(s.log))
	if corsOrigins != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     strings.Split(corsOrigins, ","),
			AllowCredentials: true,
		}))
	}

	e.GET("/", s.root)
	e.GET("/health", s.health)

	api := e.Group("/api/v1")
	api.GET("/patients", s.listRecentPatients)
	api.GET("/patients/:identifier", s.getPatientProfile)
	api.POST("/patients/:identifier/consultation", s.addConsultation)
	api.POST("/patients/:identifier/memory", s.updateMemory)
	api.GET("/patients/:identifier/brief", s.aiPatientBrief)
	api.POST("/patients/:identifier/consultation-prep", s.aiConsultationPrep)
	api.POST("/chat", s.chat)

	return s, e
}

// requestLogger logs one structured line per request.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return err
		}
	}
}
