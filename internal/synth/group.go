package synth

import (
	"strings"

	"github.com/divmain/drydock-scaffold/internal/domain"
)

// GroupRoutes buckets transactions by method, hostname and path in a single
// pass over txs. Nil entries and transactions without a response facet are
// skipped. Responses keep input order; identical bodies are not merged.
func GroupRoutes(txs []*domain.Transaction) *domain.RouteSet {
	routes := domain.NewRouteSet()
	for _, tx := range txs {
		if tx == nil || tx.HadError || tx.Response == nil {
			continue
		}
		key := domain.RouteKey(tx.Method, tx.Hostname, tx.Pathname)
		route, ok := routes.Get(key)
		if !ok {
			route = routes.Put(&domain.Route{
				Key:      key,
				Method:   tx.Method,
				Hostname: tx.Hostname,
				Pathname: tx.Pathname,
				IsJSON:   strings.Contains(tx.Response.ContentType(), "application/json"),
			})
		}
		route.Add(tx.Response.StatusCode, tx.Response.Body, tx.Response.Headers)
	}
	return routes
}
