// Package apitest provides a scripted stand-in for the knowledge service's
// ingest and query endpoints. It is intended for tests only.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Reply is a canned response. Raw, when set, is written verbatim instead of
// the JSON encoding of Body.
type Reply struct {
	Status int
	Body   any
	Raw    string

	// Abort closes the connection without writing a response.
	Abort bool
	// Wait blocks the handler until the channel is closed or the request is
	// cancelled.
	Wait <-chan struct{}
}

// Recorded is a request the server received.
type Recorded struct {
	Path        string
	ContentType string
	RequestID   string
	Body        []byte
}

// Decoded unmarshals the recorded body into a generic map.
func (r Recorded) Decoded() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Body, &m)
	return m
}

// Server wraps an httptest.Server routing /ingest and /query through gin.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	ingest   func(text string) Reply
	query    func(query string) Reply
	requests []Recorded
}

// NewServer starts a server whose default behaviour mirrors the reference
// backend: ingestion reports one chunk per paragraph, an empty query is
// rejected with 400 and any other query is echoed back without sources.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		ingest: defaultIngest,
		query:  defaultQuery,
	}

	router := gin.New()
	router.POST("/ingest", s.handleIngest)
	router.POST("/query", s.handleQuery)

	s.Server = httptest.NewServer(router)
	return s
}

// OnIngest replaces the ingest handler.
func (s *Server) OnIngest(fn func(text string) Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingest = fn
}

// OnQuery replaces the query handler.
func (s *Server) OnQuery(fn func(query string) Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = fn
}

// ReplyIngest makes every ingestion answer with r.
func (s *Server) ReplyIngest(r Reply) { s.OnIngest(func(string) Reply { return r }) }

// ReplyQuery makes every query answer with r.
func (s *Server) ReplyQuery(r Reply) { s.OnQuery(func(string) Reply { return r }) }

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) record(c *gin.Context) []byte {
	body, _ := c.GetRawData()
	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Path:        c.Request.URL.Path,
		ContentType: c.GetHeader("Content-Type"),
		RequestID:   c.GetHeader("X-Request-ID"),
		Body:        body,
	})
	s.mu.Unlock()
	return body
}

func (s *Server) handleIngest(c *gin.Context) {
	body := s.record(c)
	var req struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Text == nil {
		c.JSON(http.StatusUnprocessableEntity, missingField("text"))
		return
	}
	s.mu.Lock()
	fn := s.ingest
	s.mu.Unlock()
	write(c, fn(*req.Text))
}

func (s *Server) handleQuery(c *gin.Context) {
	body := s.record(c)
	var req struct {
		Query *string `json:"query"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Query == nil {
		c.JSON(http.StatusUnprocessableEntity, missingField("query"))
		return
	}
	s.mu.Lock()
	fn := s.query
	s.mu.Unlock()
	write(c, fn(*req.Query))
}

func write(c *gin.Context, r Reply) {
	if r.Wait != nil {
		select {
		case <-r.Wait:
		case <-c.Request.Context().Done():
			return
		}
	}
	if r.Abort {
		conn, _, err := c.Writer.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if r.Raw != "" {
		c.Data(status, "application/json", []byte(r.Raw))
		return
	}
	if r.Body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, r.Body)
}

// missingField mimics a FastAPI request validation failure, whose detail is
// a list rather than a string.
func missingField(name string) gin.H {
	return gin.H{"detail": []gin.H{{
		"loc":  []string{"body", name},
		"msg":  "field required",
		"type": "value_error.missing",
	}}}
}

func defaultIngest(text string) Reply {
	chunks := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			chunks++
		}
	}
	return Reply{Status: http.StatusOK, Body: gin.H{
		"message":          "Document ingested successfully!",
		"chunks_processed": chunks,
		"processing_time":  "0.01s",
	}}
}

func defaultQuery(query string) Reply {
	if query == "" {
		return Detail(http.StatusBadRequest, "Query cannot be empty.")
	}
	return Reply{Status: http.StatusOK, Body: gin.H{
		"query":           query,
		"answer":          query,
		"sources":         []gin.H{},
		"processing_time": "0.01s",
	}}
}

// Detail builds an error reply carrying a detail message.
func Detail(status int, detail string) Reply {
	return Reply{Status: status, Body: gin.H{"detail": detail}}
}

// Answer builds a successful query reply.
func Answer(answer, processingTime string, sources ...Source) Reply {
	items := make([]gin.H, 0, len(sources))
	for _, src := range sources {
		items = append(items, gin.H{
			"citation_id": src.CitationID,
			"source":      src.Name,
			"content":     src.Content,
		})
	}
	return Reply{Status: http.StatusOK, Body: gin.H{
		"answer":          answer,
		"sources":         items,
		"processing_time": processingTime,
	}}
}

// Chunks builds a successful ingestion reply.
func Chunks(n int) Reply {
	return Reply{Status: http.StatusOK, Body: gin.H{"chunks_processed": n}}
}

// Source is a citation in an Answer reply. CitationID may be an int or a string.
type Source struct {
	CitationID any
	Name       string
	Content    string
}
