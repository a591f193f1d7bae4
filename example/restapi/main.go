// Example: Using the sqlbuddy HTTP API
//
// This example submits a batch run, polls it until it finishes and prints
// the outcomes. It also shows the highlight and split endpoints.
//
// Start the server:
//
//	go run ./cmd/sqlbuddy serve
//
// Then run this example:
//
//	go run ./example/restapi
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/nnnkkk7/sqlbuddy/server/types"
)

var baseURL = getBaseURL()

func getBaseURL() string {
	host := os.Getenv("SQLBUDDY_HOST")
	if host == "" {
		host = "localhost:8080"
	}
	return fmt.Sprintf("http://%s/api/v1", host)
}

func main() {
	fmt.Println("=== sqlbuddy HTTP API Example ===")
	fmt.Println()

	sql := `-- totals per day
CREATE TABLE IF NOT EXISTS sales (day DATE, amount INTEGER);
INSERT INTO sales VALUES (DATE '2024-01-01', 10), (DATE '2024-01-01', 5), (DATE '2024-01-02', 7);
SELECT day, sum(amount) AS total FROM sales GROUP BY day ORDER BY day; /* done */`

	fmt.Println("1. Highlight")
	var hl types.HighlightResponse
	mustPost("/highlight", types.TextRequest{Text: sql}, http.StatusOK, &hl)
	for _, span := range hl.Spans {
		if span.Style == "muted" {
			fmt.Printf("   muted [%d,%d): %q\n", span.Start, span.End, span.Text)
		}
	}

	fmt.Println("\n2. Split")
	var split types.SplitResponse
	mustPost("/split", types.TextRequest{Text: sql}, http.StatusOK, &split)
	for i, stmt := range split.Statements {
		fmt.Printf("   %d. %s\n", i+1, stmt)
	}

	fmt.Println("\n3. Submit run")
	var run types.RunResponse
	mustPost("/runs", types.RunRequest{SQL: sql}, http.StatusAccepted, &run)
	fmt.Printf("   handle: %s\n", run.Handle)

	fmt.Println("\n4. Poll run")
	for run.Status == "pending" || run.Status == "running" {
		time.Sleep(100 * time.Millisecond)
		mustGet("/runs/"+run.Handle, &run)
	}
	fmt.Printf("   status: %s\n", run.Status)

	for i, o := range run.Outcomes {
		fmt.Printf("   Result %d (%s)\n", i+1, o.Kind)
		switch o.Kind {
		case "table":
			fmt.Printf("     %v\n", o.Columns)
			for _, row := range o.Rows {
				fmt.Printf("     %v\n", row)
			}
		case "update":
			fmt.Printf("     Total records updated: %d\n", *o.AffectedCount)
		case "error":
			fmt.Printf("     Error in statement %d: %s\n", *o.StatementIndex+1, o.Text)
		}
	}

	fmt.Println("\n=== Example completed ===")
}

func mustPost(path string, body any, wantStatus int, out any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Fatalf("POST %s failed: %v", path, err)
	}
	decode(resp, path, wantStatus, out)
}

func mustGet(path string, out any) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		log.Fatalf("GET %s failed: %v", path, err)
	}
	decode(resp, path, http.StatusOK, out)
}

func decode(resp *http.Response, path string, wantStatus int, out any) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read %s response: %v", path, err)
	}
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s returned %d: %s", path, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Fatalf("Failed to decode %s response: %v", path, err)
	}
}
