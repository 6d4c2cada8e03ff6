package treatshttp

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	treats "github.com/weegigs/pearls-treats"
)

// WithLogging writes one access log line per request.
func WithLogging(h http.Handler) http.Handler {
	logFn := func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()

		uri := r.RequestURI
		method := r.Method
		topology := treats.ClassifyTopology(r.Header)
		h.ServeHTTP(rw, r)

		duration := time.Since(start)

		log.WithFields(log.Fields{
			"uri":      uri,
			"method":   method,
			"topology": topology.String(),
			"duration": duration,
		}).Info()
	}
	return http.HandlerFunc(logFn)
}
