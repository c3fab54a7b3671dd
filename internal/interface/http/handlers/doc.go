// Package handlers contains HTTP health checking and reusable middleware.
//
// # Health Checks
//
// The HealthChecker interface allows registering named checks that run in
// parallel. Critical checks (the database) decide readiness; optional checks
// (the cache) only mark the service as degraded:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(conn))
//	checker.AddOptionalCheck("cache", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Printf("not ready: %s", status.Message)
//	}
//
// # Middleware
//
//	h := handlers.ChainHandler(mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.NoCacheMiddleware,
//	)
package handlers
