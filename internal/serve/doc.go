// Package serve exposes a store over HTTP.
//
// Routes:
//
//	GET   /state            current value as JSON
//	GET   /state?path=a.b   the value at a gjson path
//	PUT   /state            replace the value with the JSON body
//	PATCH /state            merge the JSON body onto the value
//	GET   /ws?path=a.b      websocket stream of changes at path
//	GET   /metrics          Prometheus metrics
//	GET   /healthz          liveness probe
//
// Each websocket client owns a selector over the store, so it only receives
// a message when the value at its path actually changes.
//
// Every request runs in an OpenTelemetry server span named after its route.
// With ServerOptions.Registerer set, request counts and durations are also
// recorded under vstore_http_*.
package serve
