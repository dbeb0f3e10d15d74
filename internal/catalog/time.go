// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"fmt"
	"time"
)

// timeLayout is the storage format for timestamps, always written in UTC.
// RFC3339Nano drops trailing zeros from the fractional seconds, so the
// stored strings do not sort chronologically as text.
const timeLayout = time.RFC3339Nano

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("catalog: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
