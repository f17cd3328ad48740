package config

// Application constants
const (
	AppName    = "Auction Server"
	AppVersion = "1.0.0"

	// DefaultEnvFile is the dotenv file read at startup when none is given.
	DefaultEnvFile = ".env"

	// DefaultPort is used when PORT is unset.
	DefaultPort = 5000

	// DefaultDatabaseName is used when neither DATABASE_NAME nor the URI names a database.
	DefaultDatabaseName = "test"

	// DefaultAllowedOrigin is the only cross-origin caller permitted out of the box.
	DefaultAllowedOrigin = "http://localhost:3000"
)
