// Package api is the HTTP surface of the task tracker. It decodes and
// validates requests, calls the services with the acting user's id and maps
// service errors to status codes in one place (MapErrorToStatusCode).
package api
