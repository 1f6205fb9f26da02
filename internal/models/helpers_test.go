package models

import "time"

func fixedTime(hours int) time.Time {
	return time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}
