package api

import (
	"net/http"
	"strings"

	"github.com/nerrad567/fieldtask-core/internal/infrastructure/logging"
)

// Preflight response header values.
const (
	corsAllowHeaders  = "Content-Type,Accept"
	corsExposeHeaders = "Content-Type,Accept"
	corsMaxAge        = "86400"
)

// Request is what the dispatcher hands a resource handler once the request
// has passed method, negotiation and body checks.
type Request struct {
	// ID is the trailing path segment on item routes, empty otherwise.
	ID string

	// Body is the decoded JSON object for POST and PUT, nil otherwise.
	Body map[string]any
}

// HandlerFunc serves one (resource, shape, method) combination.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, req Request)

// HandlerKey identifies a handler slot in the dispatch table.
type HandlerKey struct {
	Resource string
	Shape    Shape
	Method   string
}

// Handlers maps every route table entry to its handler.
type Handlers map[HandlerKey]HandlerFunc

// Router dispatches /api requests against an immutable RouteTable.
//
// Each request gets exactly one response, decided in this order: unknown
// path 404, OPTIONS preflight 204, method not accepted 405, Accept without
// JSON 406, POST/PUT without a JSON Content-Type 400, unparseable body 400,
// then the handler. A table entry with no handler answers 500.
//
// Thread Safety: Router holds no mutable state after construction.
type Router struct {
	table    RouteTable
	handlers Handlers
	logger   *logging.Logger
}

// NewRouter creates a dispatcher. The handler map is copied.
func NewRouter(table RouteTable, handlers Handlers, logger *logging.Logger) *Router {
	h := make(Handlers, len(handlers))
	for k, v := range handlers {
		h[k] = v
	}
	return &Router{table: table, handlers: h, logger: logger}
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	match, ok := rt.table.Match(r.URL.Path)
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}

	if r.Method == http.MethodOptions {
		writePreflight(w, match.Methods())
		return
	}

	if !match.Allows(r.Method) {
		w.Header().Set("Allow", strings.Join(append(match.Methods(), http.MethodOptions), ", "))
		writeStatus(w, http.StatusMethodNotAllowed)
		return
	}

	if !acceptsJSON(r) {
		writeStatus(w, http.StatusNotAcceptable)
		return
	}

	req := Request{ID: match.ID}
	if hasBody(r.Method) {
		if !isJSON(r) {
			writeBadRequest(w, "Invalid Content-Type. Expected application/json")
			return
		}
		body, err := parseBodyJSON(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		req.Body = body
	}

	handler, ok := rt.handlers[HandlerKey{Resource: match.Resource, Shape: match.Shape, Method: r.Method}]
	if !ok {
		rt.logger.Error("no handler registered for route",
			"resource", match.Resource,
			"shape", match.Shape.String(),
			"method", r.Method,
		)
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	handler(w, r, req)
}

func writePreflight(w http.ResponseWriter, methods []string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
	writeStatus(w, http.StatusNoContent)
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}
