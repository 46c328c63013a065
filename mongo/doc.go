/*
Package mongo manages the service's two connections to MongoDB.

The native handle is a plain driver client that returns raw documents. The mapped
handle decodes documents into the Go models in this package, such as User. Both are
opened by Connect against the same URI and closed together by Shutdown.

Each handle caches whether its servers are reachable from the driver's heartbeat
events, so HealthStatus answers without touching the network.
*/
package mongo
