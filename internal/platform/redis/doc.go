// Package redis provides Redis-backed infrastructure: the client constructor
// and the failed-login throttle used by the authentication service.
package redis
