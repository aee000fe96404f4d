// Package gqlhttp serves a GraphQL schema over HTTP.
//
// Queries are accepted as GET (query, operationName and variables URL
// parameters) or POST with an application/json body. Gzip-encoded request
// bodies are decoded, and responses are gzip-encoded when the client accepts
// it. Execution results are always written with 200 OK; transport problems
// are reported with 4xx and a GraphQL-shaped error body.
package gqlhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
)

// MaxBodySize limits the size of a decoded request body.
const MaxBodySize = 1 << 20

const allowedMethods = "GET, POST, OPTIONS"

// Executor executes a GraphQL document. *graphql.Schema implements it.
type Executor interface {
	Exec(ctx context.Context, query, operationName string, variables map[string]interface{}) *graphql.Response
}

var _ Executor = (*graphql.Schema)(nil)

// Request is a decoded GraphQL-over-HTTP request.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// requestError is a malformed request, answered with its status code.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// Handler serves GraphQL requests against an Executor.
type Handler struct {
	exec Executor
}

// NewHandler returns a Handler for exec.
func NewHandler(exec Executor) *Handler {
	return &Handler{exec: exec}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Allow", allowedMethods)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	gzipOK := acceptsGzip(r.Header.Get("Accept-Encoding"))

	req, err := decodeRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			status = reqErr.status
		}
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", allowedMethods)
		}
		zctx.From(r.Context()).Debug("Bad GraphQL request", zap.Error(err))
		write(r.Context(), w, status, &graphql.Response{
			Errors: []*gqlerrors.QueryError{gqlerrors.Errorf("%s", err.Error())},
		}, gzipOK)
		return
	}

	resp := h.exec.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	write(r.Context(), w, http.StatusOK, resp, gzipOK)
}

func decodeRequest(r *http.Request) (*Request, error) {
	req := &Request{}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := decodeJSON(strings.NewReader(v), &req.Variables); err != nil {
				return nil, badRequest("invalid variables: %v", err)
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, badRequest("unable to parse media type: %v", err)
		}
		if mediaType != "application/json" {
			return nil, &requestError{
				status: http.StatusUnsupportedMediaType,
				msg:    "unsupported Content-Type, use application/json for GraphQL requests",
			}
		}

		var body io.Reader = http.MaxBytesReader(nil, r.Body, MaxBodySize)
		if r.Header.Get("Content-Encoding") == "gzip" {
			zr, err := pgzip.NewReader(body)
			if err != nil {
				return nil, badRequest("unable to parse gzip: %v", err)
			}
			defer func() { _ = zr.Close() }()
			body = io.LimitReader(zr, MaxBodySize)
		}
		if err := decodeJSON(body, req); err != nil {
			return nil, badRequest("not a valid GraphQL request body: %v", err)
		}
	default:
		return nil, &requestError{
			status: http.StatusMethodNotAllowed,
			msg:    "unsupported request method, use GET or POST for GraphQL requests",
		}
	}

	if strings.TrimSpace(req.Query) == "" {
		return nil, badRequest("query is required")
	}
	return req, nil
}

// acceptsGzip reports whether an Accept-Encoding value allows gzip. An
// explicit gzip entry wins over "*"; q=0 refuses the coding.
func acceptsGzip(header string) bool {
	wildcard := false
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(part, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		ok := qualityAllows(params)
		if coding == "gzip" {
			return ok
		}
		wildcard = ok
	}
	return wildcard
}

func qualityAllows(params string) bool {
	for _, param := range strings.Split(params, ";") {
		name, value, found := strings.Cut(param, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return err == nil && q > 0
	}
	return true
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func write(ctx context.Context, w http.ResponseWriter, status int, resp *graphql.Response, gzipOK bool) {
	data, err := json.Marshal(resp)
	if err != nil {
		zctx.From(ctx).Error("Marshal GraphQL response", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Add("Vary", "Accept-Encoding")

	var out io.Writer = w
	if gzipOK {
		w.Header().Set("Content-Encoding", "gzip")
		zw := pgzip.NewWriter(w)
		defer func() {
			if err := zw.Close(); err != nil {
				zctx.From(ctx).Debug("Close gzip writer", zap.Error(err))
			}
		}()
		out = zw
	}

	w.WriteHeader(status)
	if _, err := out.Write(data); err != nil {
		zctx.From(ctx).Debug("Write GraphQL response", zap.Error(err))
	}
}
