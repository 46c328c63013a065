/*
Package httpserver runs HTTP servers that shut down gracefully and report their
connection counts as gauges.

The ginrouter subpackage builds routers with request spans, panic recovery and
client cancellation handling. The healthcheck subpackage serves the admin API.
*/
package httpserver
