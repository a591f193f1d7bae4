package query

import (
	"context"

	"github.com/nnnkkk7/sqlbuddy/pkg/connection"
)

// Drain walks every result of cur in order and converts each one into an
// outcome: a row-set becomes a TableResult and an update count becomes an
// UpdateMessage. The walk ends once the current result is neither.
//
// On error the outcomes collected so far are returned with it. Drain does
// not close the cursor.
func Drain(ctx context.Context, cur connection.Cursor) ([]Outcome, error) {
	var outcomes []Outcome

	isRowSet := cur.IsRowSet()
	count, hasCount := cur.UpdateCount()
	for isRowSet || hasCount {
		if isRowSet {
			set, err := cur.RowSet(ctx)
			if err != nil {
				return outcomes, err
			}
			outcomes = append(outcomes, newTableResult(set))
		}
		if hasCount {
			outcomes = append(outcomes, UpdateMessage{AffectedCount: count})
		}

		var err error
		isRowSet, err = cur.Advance(ctx)
		if err != nil {
			return outcomes, err
		}
		count, hasCount = cur.UpdateCount()
	}

	return outcomes, nil
}
