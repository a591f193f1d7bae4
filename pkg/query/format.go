package query

import (
	"fmt"
	"strconv"
	"time"
)

// NullDisplay is how SQL NULL is shown in a TableResult.
const NullDisplay = "NULL"

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

// FormatValue converts a scanned database value to its display string.
func FormatValue(val any) string {
	if val == nil {
		return NullDisplay
	}

	switch v := val.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		// Drivers hand DATE columns back as midnight timestamps.
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(dateLayout)
		}
		return v.Format(timestampLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatRows converts every value of rows with FormatValue.
func FormatRows(rows [][]any) [][]string {
	result := make([][]string, len(rows))
	for i, row := range rows {
		strRow := make([]string, len(row))
		for j, val := range row {
			strRow[j] = FormatValue(val)
		}
		result[i] = strRow
	}
	return result
}
