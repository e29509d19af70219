// Package guidelinely is a client for the environmental guideline
// calculation service.
//
// Client composes the pieces in the sub-packages: configuration from the
// environment (config), request normalization and caching (calc, cache),
// the HTTP adapter (remote), health reporting (health) and optional
// telemetry (observe).
//
//	cfg, err := config.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	client, err := guidelinely.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	res, err := client.Calculate(ctx, "Aluminum", "surface_water",
//	    calc.Single(calc.Context{"pH": "7.0", "hardness": "100 mg/L"}), "")
//
// Identical calculations are answered from a SQLite cache in
// GUIDELINELY_CACHE_DIR, shared by every process on the host, until their
// TTL passes.
package guidelinely
