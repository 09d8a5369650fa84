// Package repository holds the column conversions shared by the Postgres
// repositories. Each entity lives in its own subpackage.
package repository

import (
	"fmt"
	"time"
)

// WeekdayColumn converts a weekday to its SMALLINT column value (0 = Sunday).
func WeekdayColumn(d time.Weekday) int16 {
	return int16(d)
}

// WeekdaysColumn converts weekdays to a SMALLINT[] column value.
func WeekdaysColumn(days []time.Weekday) []int16 {
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

// ScanWeekday validates a SMALLINT weekday read back from the store.
func ScanWeekday(v int16) (time.Weekday, error) {
	if v < 0 || v > 6 {
		return 0, fmt.Errorf("weekday %d out of range", v)
	}
	return time.Weekday(v), nil
}

// ScanWeekdays validates a SMALLINT[] weekday column.
func ScanWeekdays(vs []int16) ([]time.Weekday, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]time.Weekday, len(vs))
	for i, v := range vs {
		d, err := ScanWeekday(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
