// Package tenant resolves multitenant API keys to the (organization,
// project) scope that isolates guardrail configuration and ban-lists
// between customers.
//
// The BackendResolver calls the central credential service; the
// CachingResolver decorator keeps hot keys out of that round trip using
// either the in-process cache or a Redis-backed one for multi-instance
// deployments. Middleware wires resolution into the HTTP layer and puts
// the scope on the request context.
package tenant
