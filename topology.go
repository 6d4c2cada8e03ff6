package treats

import "net/http"

// ForwardedForHeader is set by the load balancer in front of a multi server
// deployment. Only its presence is significant.
const ForwardedForHeader = "X-Forwarded-For"

type Topology int

const (
	SingleServer Topology = iota
	MultiServer
)

func (t Topology) String() string {
	switch t {
	case MultiServer:
		return "multi-server"
	default:
		return "single-server"
	}
}

// ClassifyTopology reports MultiServer when the request carries a forwarded-for
// header, even an empty one.
func ClassifyTopology(headers http.Header) Topology {
	if _, ok := headers[http.CanonicalHeaderKey(ForwardedForHeader)]; ok {
		return MultiServer
	}

	return SingleServer
}
