package server

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type upsertRow struct {
	ID   json.RawMessage `json:"id"`
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
}

// NewRouter builds the REST surface over backend. When apiKey is non-empty
// every request must present it in the apikey header or as a bearer token.
func NewRouter(backend Backend, apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"apikey",
			"Prefer",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{backend: backend}
	rest := r.Group("/rest/v1")
	if apiKey != "" {
		rest.Use(requireAPIKey(apiKey))
	}
	rest.GET("/:table", h.selectRow)
	rest.POST("/:table", h.upsertRows)
	return r
}

type handlers struct {
	backend Backend
}

func (h *handlers) selectRow(c *gin.Context) {
	table := c.Param("table")
	filter := c.Query("id")
	if !strings.HasPrefix(filter, "eq.") || len(filter) == len("eq.") {
		c.JSON(http.StatusBadRequest, errorBody{Message: "id=eq.<value> filter required"})
		return
	}
	id := strings.TrimPrefix(filter, "eq.")

	data, ok, err := h.backend.Get(c.Request.Context(), table, id)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("select failed")
		c.JSON(http.StatusInternalServerError, errorBody{Message: "storage error"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	row := gin.H{}
	for _, col := range selectColumns(c.Query("select")) {
		switch col {
		case "id":
			row["id"] = id
		case "data":
			row["data"] = data
		}
	}
	c.JSON(http.StatusOK, []gin.H{row})
}

func (h *handlers) upsertRows(c *gin.Context) {
	table := c.Param("table")
	if conflict := c.Query("on_conflict"); conflict != "" && conflict != "id" {
		c.JSON(http.StatusBadRequest, errorBody{Message: "only on_conflict=id is supported"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Message: "unreadable body"})
		return
	}
	rows, err := decodeRows(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	prefer := c.GetHeader("Prefer")
	merge := strings.Contains(prefer, "resolution=merge-duplicates")
	ctx := c.Request.Context()

	ids := make([]string, len(rows))
	for i, row := range rows {
		var id string
		if err := json.Unmarshal(row.ID, &id); err != nil || id == "" {
			c.JSON(http.StatusBadRequest, errorBody{Message: "each row needs a string id"})
			return
		}
		ids[i] = id

		if !merge {
			_, exists, err := h.backend.Get(ctx, table, id)
			if err != nil {
				log.Error().Err(err).Str("table", table).Msg("conflict check failed")
				c.JSON(http.StatusInternalServerError, errorBody{Message: "storage error"})
				return
			}
			if exists {
				c.JSON(http.StatusConflict, errorBody{Message: "duplicate key value violates unique constraint"})
				return
			}
		}
	}

	for i, row := range rows {
		data := row.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		if err := h.backend.Put(ctx, table, ids[i], data); err != nil {
			log.Error().Err(err).Str("table", table).Msg("upsert failed")
			c.JSON(http.StatusInternalServerError, errorBody{Message: "storage error"})
			return
		}
	}

	if strings.Contains(prefer, "return=representation") {
		c.JSON(http.StatusCreated, rows)
		return
	}
	c.Status(http.StatusCreated)
}

func decodeRows(body []byte) ([]upsertRow, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var row upsertRow
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, errInvalidBody
		}
		return []upsertRow{row}, nil
	}
	var rows []upsertRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, errInvalidBody
	}
	if len(rows) == 0 {
		return nil, errEmptyBody
	}
	return rows, nil
}

func selectColumns(sel string) []string {
	if strings.TrimSpace(sel) == "" || sel == "*" {
		return []string{"id", "data"}
	}
	var cols []string
	for _, part := range strings.Split(sel, ",") {
		if col := strings.TrimSpace(part); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

func requireAPIKey(apiKey string) gin.HandlerFunc {
	want := []byte(apiKey)
	return func(c *gin.Context) {
		got := c.GetHeader("apikey")
		if got == "" {
			got = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: "invalid api key"})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
