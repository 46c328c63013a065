/*
Package system manages the startup, running, metrics and shutdown of the service.

Components register what they need with a System: services to run, health checks
for the admin API, gauges to report and cleanups for shutdown. Run blocks until one
service fails or the process is told to terminate. Cleanup then runs the cleanups
in the reverse order they were added.
*/
package system
