// Package repository persists routines and profiles in PostgreSQL. The
// sqlite and rest subpackages implement the same methods for the other
// datastore drivers.
package repository

import "errors"

// ErrRowNotFound is returned when an update targets a missing row.
var ErrRowNotFound = errors.New("row not found")
