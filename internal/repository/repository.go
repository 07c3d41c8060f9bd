package repository

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrActiveSessionExists is returned by the conditional session insert
	// when the user already has a non-completed session.
	ErrActiveSessionExists = errors.New("active session exists")

	// ErrAlreadyExists is returned when a unique-keyed insert was skipped
	// because the row is already present.
	ErrAlreadyExists = errors.New("already exists")
)

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
