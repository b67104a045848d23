package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/session"
)

// SessionReader is the read side of a session.
type SessionReader interface {
	Summary() session.Summary
	Cells() []grid.View
	Cell(index int) (grid.View, error)
}

// API holds dependencies for HTTP handlers. Redis may be nil, which
// disables the diagnostics stream.
type API struct {
	Session SessionReader
	Redis   *redis.Client
}

func NewAPI(s SessionReader, rdb *redis.Client) *API {
	return &API{Session: s, Redis: rdb}
}

type CellsResponse struct {
	Height int         `json:"height"`
	Width  int         `json:"width"`
	Cells  []grid.View `json:"cells"`
}

// GET /healthz
func (api *API) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /session
func (api *API) HandleSession(c *gin.Context) {
	c.JSON(http.StatusOK, api.Session.Summary())
}

// GET /session/cells
func (api *API) HandleCells(c *gin.Context) {
	sum := api.Session.Summary()
	c.JSON(http.StatusOK, CellsResponse{
		Height: sum.Height,
		Width:  sum.Width,
		Cells:  api.Session.Cells(),
	})
}

// GET /session/cells/:index
func (api *API) HandleCell(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	v, err := api.Session.Cell(i)
	if errors.Is(err, grid.ErrOutOfRange) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cell not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// Router wires the handlers. Gin's default logger is replaced so request
// logs go through zerolog and never onto a terminal the client is drawing.
func (api *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	r.GET("/healthz", api.HandleHealth)
	r.GET("/session", api.HandleSession)
	r.GET("/session/cells", api.HandleCells)
	r.GET("/session/cells/:index", api.HandleCell)
	r.GET("/session/diagnostics/ws", api.HandleDiagnosticsWS)
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("api request")
	}
}
