/*
Package healthcheck serves the admin API. It exposes the liveness and readiness checks
registered on the system, along with the Go runtime's standard pprof handlers.
*/
package healthcheck
