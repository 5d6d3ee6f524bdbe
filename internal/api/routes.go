package api

import (
	"net/http"
	"regexp"
	"slices"
	"strings"
)

// Resource names used as route table keys.
const (
	ResourceDevices = "devices"
	ResourceTasks   = "tasks"
)

// itemIDPattern is the id segment accepted on item routes.
const itemIDPattern = `[0-9a-z]{8,24}`

// Shape distinguishes a collection path from an item path.
type Shape int

const (
	// ShapeCollection is the bare resource path, e.g. /api/tasks.
	ShapeCollection Shape = iota
	// ShapeItem is the resource path followed by an id.
	ShapeItem
)

func (s Shape) String() string {
	if s == ShapeItem {
		return "item"
	}
	return "collection"
}

// Route declares one resource and the methods each of its shapes accepts.
// OPTIONS is implicit on both shapes and must not be listed.
type Route struct {
	Resource          string
	Path              string
	CollectionMethods []string
	ItemMethods       []string
}

// RouteTable is an immutable set of routes. Build it once with
// NewRouteTable and share it freely.
type RouteTable struct {
	routes []compiledRoute
}

type compiledRoute struct {
	Route
	item *regexp.Regexp
}

// NewRouteTable copies routes into a table and compiles each item pattern.
func NewRouteTable(routes ...Route) RouteTable {
	compiled := make([]compiledRoute, 0, len(routes))
	for _, rt := range routes {
		path := strings.TrimSuffix(rt.Path, "/")
		compiled = append(compiled, compiledRoute{
			Route: Route{
				Resource:          rt.Resource,
				Path:              path,
				CollectionMethods: slices.Clone(rt.CollectionMethods),
				ItemMethods:       slices.Clone(rt.ItemMethods),
			},
			item: regexp.MustCompile("^" + regexp.QuoteMeta(path) + "/" + itemIDPattern + "$"),
		})
	}
	return RouteTable{routes: compiled}
}

// DefaultRouteTable is the Fieldtask API surface.
func DefaultRouteTable() RouteTable {
	return NewRouteTable(
		Route{
			Resource:          ResourceDevices,
			Path:              "/api/devices",
			CollectionMethods: []string{http.MethodGet},
			ItemMethods:       []string{http.MethodGet},
		},
		Route{
			Resource:          ResourceTasks,
			Path:              "/api/tasks",
			CollectionMethods: []string{http.MethodGet, http.MethodPost},
			ItemMethods:       []string{http.MethodGet, http.MethodPut, http.MethodDelete},
		},
	)
}

// Match is the outcome of resolving a request path against the table.
type Match struct {
	Resource string
	Shape    Shape
	ID       string
	methods  []string
}

// Methods returns the methods accepted by the matched shape, excluding
// OPTIONS.
func (m Match) Methods() []string {
	return slices.Clone(m.methods)
}

// Allows reports whether method is accepted by the matched shape.
func (m Match) Allows(method string) bool {
	return slices.Contains(m.methods, method)
}

// Match resolves path to a route shape. Collection paths must match
// exactly; item paths must end in a valid id segment.
func (t RouteTable) Match(path string) (Match, bool) {
	for _, rt := range t.routes {
		if path == rt.Path {
			return Match{Resource: rt.Resource, Shape: ShapeCollection, methods: rt.CollectionMethods}, true
		}
		if rt.item.MatchString(path) {
			return Match{
				Resource: rt.Resource,
				Shape:    ShapeItem,
				ID:       path[strings.LastIndex(path, "/")+1:],
				methods:  rt.ItemMethods,
			}, true
		}
	}
	return Match{}, false
}

// Routes returns a copy of the declared routes.
func (t RouteTable) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, rt := range t.routes {
		out = append(out, Route{
			Resource:          rt.Resource,
			Path:              rt.Path,
			CollectionMethods: slices.Clone(rt.CollectionMethods),
			ItemMethods:       slices.Clone(rt.ItemMethods),
		})
	}
	return out
}
