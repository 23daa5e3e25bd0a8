// Package server exposes a Compiler over HTTP. It speaks the usual
// GraphQL transport conventions, JSON POST bodies or query parameters,
// including batched arrays, but responds with the compiled SQL of each
// root field instead of executed data.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	compile "github.com/hanpama/graphargs/internal/compile"
	eventbus "github.com/hanpama/graphargs/internal/eventbus"
	events "github.com/hanpama/graphargs/internal/events"
	language "github.com/hanpama/graphargs/internal/language"
	reqid "github.com/hanpama/graphargs/internal/reqid"
)

// Handler is an http.Handler that serves the explain endpoint.
type Handler struct {
	compiler *compile.Compiler
	opt      Options
}

type Options struct {
	// Timeout bounds each request when the incoming context carries no
	// deadline of its own. Zero disables the bound.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes caps POST bodies. Zero means no cap.
	MaxBodyBytes int64

	// CORS lists the origins allowed to call the endpoint. With no
	// origins configured, no CORS headers are written.
	CORS CORSOptions
}

type Option func(*Options)

func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }

// WithCORS allows cross-origin calls from the given origins. "*" allows any.
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions controls cross-origin response headers.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates an explain handler around the compiler.
func New(c *compile.Compiler, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{compiler: c, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.opt.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
			defer cancel()
		}
	}

	ctx, rid := reqid.NewContext(ctx)
	w.Header().Set("X-Request-Id", strconv.FormatInt(rid, 10))
	status := http.StatusOK
	served := 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Requests: served, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		h.applyCORS(w, r)
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResult("method not allowed", nil), h.opt.Pretty)
		return
	}

	req, batch, perr := parseRequest(r, h.opt.MaxBodyBytes)
	if perr != nil {
		status = http.StatusBadRequest
		if perr.message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResult(perr.message, nil), h.opt.Pretty)
		return
	}

	h.applyCORS(w, r)

	if batch != nil {
		served = len(batch)
		results := make([]explainResult, len(batch))
		for i := range batch {
			results[i] = h.explainOne(ctx, batch[i])
		}
		writeJSON(w, status, results, h.opt.Pretty)
		return
	}

	served = 1
	writeJSON(w, status, h.explainOne(ctx, req), h.opt.Pretty)
}

func (h *Handler) explainOne(ctx context.Context, req compile.Request) explainResult {
	res, err := h.compiler.Compile(ctx, req)
	if err != nil {
		var ge *language.Error
		if errors.As(err, &ge) {
			return errorResult(ge.Message, ge.Locations)
		}
		return errorResult(err.Error(), nil)
	}
	return explainResult{Fields: res.Fields}
}

// parseError keeps transport-level failures apart from compile errors,
// which always answer 200.
type parseError struct {
	message string
}

func parseRequest(r *http.Request, maxBody int64) (compile.Request, []compile.Request, *parseError) {
	if r.Method == http.MethodGet {
		req, perr := requestFromQuery(r.URL.Query())
		return req, nil, perr
	}
	return requestFromBody(r, maxBody)
}

func requestFromQuery(values url.Values) (compile.Request, *parseError) {
	query := values.Get("query")
	if query == "" {
		return compile.Request{}, &parseError{message: "missing 'query'"}
	}
	vars := map[string]any{}
	if raw := values.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &vars); err != nil {
			return compile.Request{}, &parseError{message: "invalid 'variables' JSON"}
		}
	}
	return compile.Request{
		Query:         query,
		OperationName: values.Get("operationName"),
		Variables:     vars,
	}, nil
}

func requestFromBody(r *http.Request, maxBody int64) (compile.Request, []compile.Request, *parseError) {
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	if ct = strings.TrimSpace(ct); ct != "" && ct != "application/json" {
		return compile.Request{}, nil, &parseError{message: "unsupported Content-Type"}
	}

	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return compile.Request{}, nil, &parseError{message: "failed to read body"}
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return compile.Request{}, nil, &parseError{message: errBodyTooLargeMessage}
	}
	body = bytes.TrimSpace(body)

	// A leading bracket means a batch.
	if len(body) > 0 && body[0] == '[' {
		var batch []compile.Request
		if err := json.Unmarshal(body, &batch); err != nil {
			return compile.Request{}, nil, &parseError{message: "invalid JSON"}
		}
		if len(batch) == 0 {
			return compile.Request{}, nil, &parseError{message: "empty batch"}
		}
		for i := range batch {
			if batch[i].Variables == nil {
				batch[i].Variables = map[string]any{}
			}
		}
		return compile.Request{}, batch, nil
	}

	var req compile.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return compile.Request{}, nil, &parseError{message: "invalid JSON"}
	}
	if req.Query == "" {
		return compile.Request{}, nil, &parseError{message: "missing 'query'"}
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	return req, nil, nil
}

type resultLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type resultError struct {
	Message   string           `json:"message"`
	Locations []resultLocation `json:"locations,omitempty"`
}

type explainResult struct {
	Fields []compile.FieldSQL `json:"fields"`
	Errors []resultError      `json:"errors,omitempty"`
}

func errorResult(message string, locations []language.ErrorLocation) explainResult {
	re := resultError{Message: message}
	for _, loc := range locations {
		re.Locations = append(re.Locations, resultLocation{Line: loc.Line, Column: loc.Column})
	}
	return explainResult{Errors: []resultError{re}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

// applyCORS writes Access-Control headers when the request origin is
// allowed. Preflight requests additionally get the allowed methods.
func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) {
	allowed := h.opt.CORS.AllowedOrigins
	if len(allowed) == 0 {
		return
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := slices.Contains(allowed, "*")
	if !wildcard && !slices.Contains(allowed, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
