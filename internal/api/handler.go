// Package api exposes a QueryService over HTTP as JSON read endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"semshapes/internal/domain"
)

const welcomeMessage = "Welcome to the Semantic Shapes API"

// Defaults are the result sizes used when a request omits them.
// A zero field means unset and is replaced by 10, 5 and 10000 respectively.
type Defaults struct {
	SimilarN    int
	ArithmeticN int
	VocabLimit  int
}

// Options configures the HTTP handler.
type Options struct {
	Defaults       Defaults
	AllowedOrigins []string
	Logf           func(format string, args ...any)
}

type handler struct {
	svc      domain.QueryService
	defaults Defaults
}

// New returns the routed handler wrapped with CORS, request ids, access logging and panic recovery.
func New(svc domain.QueryService, opts Options) http.Handler {
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	// zero is unset, not a request for empty results
	if opts.Defaults.SimilarN == 0 {
		opts.Defaults.SimilarN = 10
	}
	if opts.Defaults.ArithmeticN == 0 {
		opts.Defaults.ArithmeticN = 5
	}
	if opts.Defaults.VocabLimit == 0 {
		opts.Defaults.VocabLimit = 10000
	}
	h := &handler{svc: svc, defaults: opts.Defaults}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /api/info", h.info)
	mux.HandleFunc("GET /api/vector", h.vector)
	mux.HandleFunc("GET /api/similar", h.similar)
	mux.HandleFunc("GET /api/arithmetic", h.arithmetic)
	mux.HandleFunc("GET /api/projected", h.projected)
	mux.HandleFunc("GET /api/vocab", h.vocab)

	var next http.Handler = mux
	next = recoverPanics(next, opts.Logf)
	next = accessLog(next, opts.Logf)
	next = requestID(next)
	return withCORS(next, opts.AllowedOrigins)
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *handler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Info()
	if err != nil {
		writeError(w, statusFor(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) vector(w http.ResponseWriter, r *http.Request) {
	word, err := requiredParam(r, "word")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	vec, err := h.svc.Vector(word)
	if err != nil {
		writeError(w, statusFor(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Word   string    `json:"word"`
		Vector []float64 `json:"vector"`
	}{word, vec})
}

func (h *handler) similar(w http.ResponseWriter, r *http.Request) {
	word, err := requiredParam(r, "word")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	n, err := intParam(r, "n", h.defaults.SimilarN)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	similar, err := h.svc.Similar(word, n)
	if err != nil {
		writeError(w, statusFor(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Word    string            `json:"word"`
		Similar []domain.Neighbor `json:"similar"`
	}{word, similar})
}

func (h *handler) arithmetic(w http.ResponseWriter, r *http.Request) {
	expr, err := requiredParam(r, "expr")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	n, err := intParam(r, "n", h.defaults.ArithmeticN)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	results, err := h.svc.Evaluate(expr, n)
	if err != nil {
		// unknown words are a bad expression here, not a missing resource
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrModelNotLoaded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Expression string            `json:"expression"`
		Results    []domain.Neighbor `json:"results"`
	}{expr, results})
}

func (h *handler) projected(w http.ResponseWriter, r *http.Request) {
	raw, err := requiredParam(r, "words")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	dims, err := intParam(r, "dimensions", 2)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	method := optionalParam(r, "method", "pca")
	words := strings.Split(raw, ",")
	for i := range words {
		words[i] = strings.TrimSpace(words[i])
	}
	coords, err := h.svc.Project(words, method, dims)
	if err != nil {
		writeError(w, statusFor(err, http.StatusBadRequest), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Words       []string           `json:"words"`
		Method      string             `json:"method"`
		Dimensions  int                `json:"dimensions"`
		Coordinates *domain.Projection `json:"coordinates"`
	}{words, method, dims, coords})
}

func (h *handler) vocab(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", h.defaults.VocabLimit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	words, err := h.svc.Vocabulary(limit, optionalParam(r, "starts_with", ""))
	if err != nil {
		writeError(w, statusFor(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count int      `json:"count"`
		Words []string `json:"words"`
	}{len(words), words})
}

// statusFor maps error kinds to HTTP status codes, using fallback for unclassified errors.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrModelNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExpression):
		return http.StatusBadRequest
	default:
		return fallback
	}
}

// param returns the query value decoded a second time, keeping the raw value when that fails.
func param(r *http.Request, name string) (string, bool) {
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	v := values[0]
	if decoded, err := url.PathUnescape(v); err == nil {
		v = decoded
	}
	return v, true
}

func requiredParam(r *http.Request, name string) (string, error) {
	v, ok := param(r, name)
	if !ok {
		return "", fmt.Errorf("missing required query parameter: %s", name)
	}
	return v, nil
}

func optionalParam(r *http.Request, name, def string) string {
	if v, ok := param(r, name); ok {
		return v
	}
	return def
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v, ok := param(r, name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", name)
	}
	return n, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
