// Package app provides application initialization and lifecycle management
// for the Data Analysis Studio. It wires configuration, logging, metrics,
// services, transport handlers, and the HTTP server into one runnable unit.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize the structured logger
//	3. Initialize the OpenTelemetry meter provider and pipeline instruments
//	4. Create the analysis and health services
//	5. Set up the router, middleware chain, and embedded UI
//	6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication(frontendFS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down within the
// configured timeout so active requests can complete, and flushes the meter
// provider. Analysis sessions live only in memory and are discarded.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app never calls
// os.Exit() directly, leaving exit control to main.
package app
