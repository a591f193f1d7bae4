// Package config provides configuration constants and loading for sqlbuddy.
package config

// DatabaseType tags select a connector.
const (
	DatabaseTypeDuckDB    = "duckdb"
	DatabaseTypeSQLite    = "sqlite"
	DatabaseTypeMySQL     = "mysql"
	DatabaseTypeSnowflake = "snowflake"
)

// Default connection settings.
const (
	DefaultDatabaseType = DatabaseTypeDuckDB
	DefaultProfileName  = "local"
	DefaultMySQLPort    = "3306"
	DefaultHTTPAddr     = ":8080"
)

// Connection test queries. The test passes when the query returns 1.
const (
	TestQuerySelectOneFromDual = "SELECT 1 FROM dual"
	TestQuerySelectOne         = "SELECT 1"
)

// BusyPolicy decides what happens when a run is requested while another run
// still owns the connection.
type BusyPolicy string

// Busy policies.
const (
	BusyPolicyWait   BusyPolicy = "wait"
	BusyPolicyReject BusyPolicy = "reject"
)

// Run defaults.
const (
	DefaultRunTTLMinutes = 60
	DefaultBusyPolicy    = BusyPolicyWait
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
