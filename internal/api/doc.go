// Package api serves the HTTP interface of the titration simulator.
//
// Routes
//
//	POST   /api/simulations              solve and store a simulation
//	GET    /api/simulations              the caller's simulations (auth)
//	GET    /api/simulations/{id}         one simulation
//	GET    /api/simulations/{id}/results its results record
//	GET    /api/simulations/{id}/chart   chart description of its curve
//	DELETE /api/simulations/{id}         owner or admin (auth)
//	POST   /api/auth/register            create an account
//	POST   /api/auth/login               exchange credentials for a token
//	GET    /api/users/me                 the caller's account (auth)
//	GET    /api/users                    every account (admin)
//	PATCH  /api/users/{id}/role          change a role (admin)
//	GET    /healthz                      liveness
//	GET    /metrics                      Prometheus exposition
//
// Every error body is {"message": "..."}; unexpected failures add an
// "error" field. Responses carry an X-Request-ID header.
package api
