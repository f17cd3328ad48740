// Package app provides application initialization and lifecycle management
// for the auction server.
//
// # Initialization Flow
//
// NewApplication performs the steps that need no network access:
//
//	1. Load configuration from the dotenv file and the process environment
//	2. Initialize logging
//	3. Set up middleware, route groups and the terminal error handler
//	4. Create the HTTP server
//
// Run then performs the steps that do:
//
//	5. Connect to MongoDB and store the handle
//	6. Bind the TCP listener on PORT and serve
//
// Step 6 is never reached unless step 5 succeeded.
//
// # Usage
//
//	application, err := app.NewApplication(app.Options{})
//	if err != nil {
//	    os.Exit(app.ExitCode(err))
//	}
//	defer application.Close()
//	if err := application.Run(ctx); err != nil {
//	    os.Exit(app.ExitCode(err))
//	}
//
// # Graceful Shutdown
//
// When ctx is cancelled the server stops accepting connections, in-flight
// requests are given SHUTDOWN_TIMEOUT to finish and the database connection
// is closed.
//
// # Error Handling
//
// Startup failures are returned as *StartupError naming the failed stage and
// are logged before they are returned. The package never calls os.Exit.
package app
