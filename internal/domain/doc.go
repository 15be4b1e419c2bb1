// Package domain contains the User and Task entities, their constructors and
// field rules, and the ValidationError reported when input breaks them.
// Nothing here knows about SQL or HTTP.
package domain
