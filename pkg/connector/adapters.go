package connector

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/snowflakedb/gosnowflake"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
)

// duckDBAdapter opens an embedded DuckDB database. An empty path is an
// in-memory database shared by every connection of the pool.
type duckDBAdapter struct{}

func (duckDBAdapter) DriverName() string { return "duckdb" }

func (duckDBAdapter) DSN(p Params) (string, error) {
	return withQuery(p.Path, p.Options), nil
}

func (duckDBAdapter) TestQuery() string { return config.TestQuerySelectOne }

// sqliteAdapter opens a SQLite file. Without a path, an in-memory database
// with a shared cache is used so every pooled connection sees the same data.
type sqliteAdapter struct{}

func (sqliteAdapter) DriverName() string { return "sqlite3" }

func (sqliteAdapter) DSN(p Params) (string, error) {
	if p.Path == "" {
		return "file::memory:?cache=shared", nil
	}
	return withQuery("file:"+p.Path, p.Options), nil
}

func (sqliteAdapter) TestQuery() string { return config.TestQuerySelectOne }

// mySQLAdapter talks to MySQL over TCP with multi-statement support enabled.
type mySQLAdapter struct{}

func (mySQLAdapter) DriverName() string { return "mysql" }

func (mySQLAdapter) DSN(p Params) (string, error) {
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	port := p.Port
	if port == "" {
		port = config.DefaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, port)
	cfg.DBName = p.Database
	cfg.MultiStatements = true
	cfg.ParseTime = true
	if len(p.Options) > 0 {
		cfg.Params = make(map[string]string, len(p.Options))
		for k, v := range p.Options {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

func (mySQLAdapter) TestQuery() string { return config.TestQuerySelectOneFromDual }

// snowflakeAdapter builds a gosnowflake DSN. Host and port are optional and
// point the driver at a non-default endpoint such as a local emulator.
type snowflakeAdapter struct{}

func (snowflakeAdapter) DriverName() string { return "snowflake" }

func (snowflakeAdapter) DSN(p Params) (string, error) {
	if p.Account == "" {
		return "", fmt.Errorf("account is required")
	}

	cfg := &gosnowflake.Config{
		Account:   p.Account,
		User:      p.User,
		Password:  p.Password,
		Database:  p.Database,
		Schema:    p.Schema,
		Warehouse: p.Warehouse,
		Host:      p.Host,
		Protocol:  p.Options["protocol"],
	}
	if p.Port != "" {
		port, err := strconv.Atoi(p.Port)
		if err != nil {
			return "", fmt.Errorf("invalid port %q: %w", p.Port, err)
		}
		cfg.Port = port
	}
	return gosnowflake.DSN(cfg)
}

func (snowflakeAdapter) TestQuery() string { return config.TestQuerySelectOne }

func withQuery(base string, options map[string]string) string {
	if len(options) == 0 {
		return base
	}
	values := url.Values{}
	for k, v := range options {
		values.Set(k, v)
	}
	return base + "?" + values.Encode()
}
