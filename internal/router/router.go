package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ErrDisabled is returned by Resolve for endpoints switched off by configuration.
var ErrDisabled = errors.New("endpoint disabled")

// Route is a backend endpoint: a stable name, an HTTP method and a path
// template relative to the API base path. Placeholders are written {name}.
type Route struct {
	Name    string `json:"name"`
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
}

// Path expands the placeholders of the pattern with args, in order.
func (rt Route) Path(args ...any) (string, error) {
	var b strings.Builder
	rest := rt.Pattern
	i := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("route %s: unterminated placeholder", rt.Name)
		}
		if i >= len(args) {
			return "", fmt.Errorf("route %s: missing value for %s", rt.Name, rest[open:open+end+1])
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(fmt.Sprint(args[i])))
		i++
		rest = rest[open+end+1:]
	}
	if i != len(args) {
		return "", fmt.Errorf("route %s: %d arguments for %d placeholders", rt.Name, len(args), i)
	}
	return b.String(), nil
}

// Router resolves endpoint names to their routes.
type Router struct {
	mu       sync.RWMutex
	routes   map[string]Route
	disabled map[string]bool
}

// New creates a Router over the given routes with the named endpoints disabled.
func New(routes []Route, disabled []string) *Router {
	r := &Router{
		routes:   make(map[string]Route, len(routes)),
		disabled: make(map[string]bool),
	}
	for _, rt := range routes {
		r.routes[rt.Name] = rt
	}
	r.setDisabled(disabled)
	return r
}

// Default returns a Router over the analytics API route table.
func Default(disabled []string) *Router {
	return New(AnalyticsRoutes, disabled)
}

// Resolve looks up the route for the given endpoint name.
func (r *Router) Resolve(name string) (Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[name]
	if !ok {
		return Route{}, fmt.Errorf("unknown endpoint: %q", name)
	}
	if r.disabled[name] {
		return Route{}, fmt.Errorf("%s: %w", name, ErrDisabled)
	}
	return rt, nil
}

// Disable switches an endpoint off. Returns false if the endpoint is unknown.
func (r *Router) Disable(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[name]; !ok {
		return false
	}
	r.disabled[name] = true
	return true
}

// Enable switches an endpoint back on. Returns false if the endpoint is unknown.
func (r *Router) Enable(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[name]; !ok {
		return false
	}
	delete(r.disabled, name)
	return true
}

// IsDisabled returns whether an endpoint is currently disabled.
func (r *Router) IsDisabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[name]
}

// List returns all routes sorted by name.
func (r *Router) List() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		result = append(result, rt)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Reload replaces the disabled set.
func (r *Router) Reload(disabled []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDisabled(disabled)
}

func (r *Router) setDisabled(disabled []string) {
	r.disabled = make(map[string]bool, len(disabled))
	for _, name := range disabled {
		if _, ok := r.routes[name]; !ok {
			slog.Warn("ignoring unknown disabled endpoint", "endpoint", name)
			continue
		}
		r.disabled[name] = true
	}
}
