package common

import (
	"encoding/json"
	"fmt"
	"time"

	"renewtrack.com/renewtrack/utils"
)

// DateOnly binds yyyy-MM-dd request fields; the engine never sees a
// wall-clock time on these.
type DateOnly struct {
	time.Time
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	// b is a quoted string like `"2026-10-29"`
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		// handle empty date gracefully
		d.Time = time.Time{}
		return nil
	}

	t, err := utils.ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}

	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(utils.FormatDate(d.Time))
}
