// Example: Using sqlbuddy as an Embedded Library
//
// This example connects to an in-memory DuckDB database through the connector
// registry, runs a commented multi-statement script on one session and prints
// every outcome the way the CLI does.
//
// Run this example:
//
//	go run ./example/embedded
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/pkg/connector"
	"github.com/nnnkkk7/sqlbuddy/pkg/highlight"
	"github.com/nnnkkk7/sqlbuddy/pkg/query"
	"github.com/nnnkkk7/sqlbuddy/pkg/render"
	"github.com/nnnkkk7/sqlbuddy/pkg/sqltext"
)

const script = `-- inventory setup
CREATE TABLE items (id INTEGER, name VARCHAR, qty INTEGER);
INSERT INTO items VALUES (1, 'bolt', 10), (2, 'nut', NULL);

/* a statement that fails; the rest still run */
SELECT * FROM no_such_table;

UPDATE items SET qty = 5 WHERE qty IS NULL;
SELECT id, name, qty FROM items ORDER BY id;
`

func main() {
	fmt.Println("=== sqlbuddy Embedded Example ===")
	fmt.Println()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	registry := connector.NewRegistry(logger)
	mgr, err := registry.Connect(ctx, config.Profile{Type: config.DatabaseTypeDuckDB})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer mgr.Close()

	fmt.Println("Script:")
	if err := highlight.WriteANSI(os.Stdout, script); err != nil {
		log.Fatalf("Failed to highlight: %v", err)
	}
	fmt.Println()

	fmt.Println("Statements:")
	for i, stmt := range sqltext.Split(script) {
		fmt.Printf("  %d. %s\n", i+1, stmt)
	}
	fmt.Println()

	sess, err := mgr.Acquire(ctx)
	if err != nil {
		log.Fatalf("Failed to acquire session: %v", err)
	}
	defer sess.Close()

	outcomes := query.NewRunner(logger).Run(ctx, sess, script)
	if err := render.Outcomes(os.Stdout, outcomes, render.FormatTable); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	fmt.Println("\n=== Example completed ===")
}
