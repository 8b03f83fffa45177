package domain

import "strconv"

// Route is a bucket of recorded responses sharing method, hostname and path.
// The query string never takes part in the key.
type Route struct {
	Key       string
	Method    string
	Hostname  string
	Pathname  string
	IsJSON    bool
	Responses []RouteResponse
}

// RouteResponse is one recorded response of a route.
type RouteResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	UniqueName string
}

// RouteKey builds the deduplication key of a route.
func RouteKey(method, hostname, pathname string) string {
	return method + "-" + hostname + pathname
}

// Add appends a response and names it after its position within the route.
func (r *Route) Add(statusCode int, body []byte, headers map[string]string) RouteResponse {
	resp := RouteResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    headers,
		UniqueName: strconv.Itoa(len(r.Responses)) + "-" + r.Key,
	}
	r.Responses = append(r.Responses, resp)
	return resp
}

// ContentType returns the content-type of the first response, falling back to
// text/text when it was not recorded.
func (r *Route) ContentType() string {
	if len(r.Responses) > 0 {
		h := r.Responses[0].Headers
		if v := h["content-type"]; v != "" {
			return v
		}
		if v := h["Content-Type"]; v != "" {
			return v
		}
	}
	return "text/text"
}

// RouteSet maps route keys to routes, remembering first-seen order.
type RouteSet struct {
	order []string
	byKey map[string]*Route
}

func NewRouteSet() *RouteSet {
	return &RouteSet{byKey: make(map[string]*Route)}
}

// Get returns the route stored under key.
func (s *RouteSet) Get(key string) (*Route, bool) {
	r, ok := s.byKey[key]
	return r, ok
}

// Put stores r unless its key is already present and returns the stored route.
func (s *RouteSet) Put(r *Route) *Route {
	if existing, ok := s.byKey[r.Key]; ok {
		return existing
	}
	s.byKey[r.Key] = r
	s.order = append(s.order, r.Key)
	return r
}

// Keys returns route keys in first-seen order.
func (s *RouteSet) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *RouteSet) Len() int { return len(s.order) }

// Each calls fn for every route in first-seen order and stops at the first error.
func (s *RouteSet) Each(fn func(*Route) error) error {
	for _, k := range s.order {
		if err := fn(s.byKey[k]); err != nil {
			return err
		}
	}
	return nil
}
