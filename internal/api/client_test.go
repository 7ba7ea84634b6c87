package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragclient/internal/apitest"
	"ragclient/internal/domain"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "})
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestNewClient_RejectsUnsupportedScheme(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "ftp://example.com"})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:8000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL())
}

func TestNewClient_NoTimeoutByDefault(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:8000"})
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), c.client.Timeout)
}

func TestIngest_Success(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyIngest(apitest.Chunks(3))

	receipt, err := newTestClient(t, srv.Server).Ingest(context.Background(), "hello world")

	require.NoError(t, err)
	assert.Equal(t, 3, receipt.ChunksProcessed)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/ingest", reqs[0].Path)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.NotEmpty(t, reqs[0].RequestID)
	assert.Equal(t, map[string]any{"text": "hello world"}, reqs[0].Decoded())
}

func TestIngest_OptionalFields(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	receipt, err := newTestClient(t, srv.Server).Ingest(context.Background(), "one\n\ntwo")

	require.NoError(t, err)
	assert.Equal(t, 2, receipt.ChunksProcessed)
	assert.Equal(t, "Document ingested successfully!", receipt.Message)
	assert.Equal(t, domain.DisplayValue("0.01s"), receipt.ProcessingTime)
}

func TestIngest_MissingChunkCount(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyIngest(apitest.Reply{Status: http.StatusOK, Raw: `{"message":"ok"}`})

	_, err := newTestClient(t, srv.Server).Ingest(context.Background(), "text")

	var malformed *domain.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, err.Error(), "chunks_processed")
}

func TestIngest_ServiceErrorWithDetail(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyIngest(apitest.Detail(http.StatusInternalServerError, "An error occurred: boom"))

	_, err := newTestClient(t, srv.Server).Ingest(context.Background(), "text")

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Equal(t, "An error occurred: boom", svcErr.Detail)
	assert.Equal(t, "Internal Server Error", svcErr.StatusText())
}

func TestIngest_ServiceErrorKeepsServerReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 599 Index Rebuilding\r\nContent-Type: application/json\r\nContent-Length: 2\r\nConnection: close\r\n\r\n{}")
		_ = buf.Flush()
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Ingest(context.Background(), "text")

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 599, svcErr.StatusCode)
	assert.Equal(t, "Index Rebuilding", svcErr.StatusText())
}

func TestIngest_ServiceErrorNonStandardStatus(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyIngest(apitest.Reply{Status: 599, Raw: `{}`})

	_, err := newTestClient(t, srv.Server).Ingest(context.Background(), "text")

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.NotEmpty(t, svcErr.StatusText())
}

func TestIngest_FalsyDetailMeansNoDetail(t *testing.T) {
	for _, body := range []string{
		`{"detail":0}`,
		`{"detail":0.0}`,
		`{"detail":false}`,
		`{"detail":null}`,
		`{"detail":""}`,
		`{}`,
	} {
		t.Run(body, func(t *testing.T) {
			srv := apitest.NewServer()
			defer srv.Close()
			srv.ReplyIngest(apitest.Reply{Status: http.StatusInternalServerError, Raw: body})

			_, err := newTestClient(t, srv.Server).Ingest(context.Background(), "text")

			var svcErr *domain.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Empty(t, svcErr.Detail)
			assert.Equal(t, "fallback", svcErr.Message("fallback"))
		})
	}
}

func TestIngest_TruthyNonStringDetail(t *testing.T) {
	for body, want := range map[string]string{
		`{"detail":7}`:    "7",
		`{"detail":true}`: "true",
	} {
		srv := apitest.NewServer()
		srv.ReplyIngest(apitest.Reply{Status: http.StatusBadRequest, Raw: body})

		_, err := newTestClient(t, srv.Server).Ingest(context.Background(), "text")
		srv.Close()

		var svcErr *domain.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, want, svcErr.Detail, body)
	}
}

func TestQuery_Success(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Answer("X is Y", "120ms",
		apitest.Source{CitationID: 1, Name: "doc.txt", Content: "Y is defined..."},
		apitest.Source{CitationID: "b", Name: "notes.md", Content: "more"},
	))

	ans, err := newTestClient(t, srv.Server).Query(context.Background(), "What is X?")

	require.NoError(t, err)
	assert.Equal(t, "X is Y", ans.Answer)
	assert.Equal(t, domain.DisplayValue("120ms"), ans.ProcessingTime)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, domain.SourceCitation{
		CitationID: domain.IntCitation(1),
		SourceName: "doc.txt",
		Excerpt:    "Y is defined...",
	}, ans.Sources[0])
	assert.Equal(t, "b", ans.Sources[1].CitationID.String())
	assert.False(t, ans.Sources[1].CitationID.IsNumeric())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"query": "What is X?"}, reqs[0].Decoded())
}

func TestQuery_PreservesSourceOrder(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Answer("a", "1s",
		apitest.Source{CitationID: 3, Name: "c"},
		apitest.Source{CitationID: 1, Name: "a"},
		apitest.Source{CitationID: 2, Name: "b"},
	))

	ans, err := newTestClient(t, srv.Server).Query(context.Background(), "q")

	require.NoError(t, err)
	var got []string
	for _, s := range ans.Sources {
		got = append(got, s.CitationID.String()+s.SourceName)
	}
	assert.Equal(t, []string{"3c", "1a", "2b"}, got)
}

func TestQuery_NumericProcessingTime(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Reply{Raw: `{"answer":"a","sources":[],"processing_time":1.25}`})

	ans, err := newTestClient(t, srv.Server).Query(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "1.25", ans.ProcessingTime.String())
}

func TestQuery_MissingSources(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Reply{Raw: `{"answer":"a"}`})

	_, err := newTestClient(t, srv.Server).Query(context.Background(), "q")

	var malformed *domain.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestQuery_ServiceErrorWithoutDetail(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Reply{Status: http.StatusBadGateway, Raw: `{"error":"upstream"}`})

	_, err := newTestClient(t, srv.Server).Query(context.Background(), "q")

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Empty(t, svcErr.Detail)
	assert.Equal(t, "fallback", svcErr.Message("fallback"))
}

func TestQuery_NonStringDetail(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	// A body without the query field is rejected like a FastAPI validation error.
	c := newTestClient(t, srv.Server)
	err := c.postJSON(context.Background(), "/query", map[string]string{}, &queryResponse{})

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.StatusCode)
	assert.Contains(t, svcErr.Detail, `"field required"`)
}

func TestQuery_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Query(context.Background(), "q")

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Empty(t, svcErr.Detail)
}

func TestQuery_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Query(context.Background(), "q")

	var malformed *domain.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)
}

func TestQuery_AbortedConnection(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.ReplyQuery(apitest.Reply{Abort: true})

	_, err := newTestClient(t, srv.Server).Query(context.Background(), "q")

	var transport *domain.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestIngest_UnreachableHost(t *testing.T) {
	srv := apitest.NewServer()
	c := newTestClient(t, srv.Server)
	srv.Close()

	_, err := c.Ingest(context.Background(), "text")

	var transport *domain.TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestQuery_ContextCancelled(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	block := make(chan struct{})
	defer close(block)
	srv.ReplyQuery(apitest.Reply{Wait: block})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, srv.Server).Query(ctx, "q")

	var transport *domain.TransportError
	require.ErrorAs(t, err, &transport)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
