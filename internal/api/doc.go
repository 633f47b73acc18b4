// Package api provides the HTTP control surface for devparam.
//
// It exposes group lifecycle operations, the parameter set/get pipeline,
// the runtime accessor view and the audit trail to fleet tooling. Every
// endpoint except the health check requires a bearer token; the token's
// claims carry the caller identity the authorization policy evaluates.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
