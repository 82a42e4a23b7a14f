// Package testdb opens throwaway databases for tests in other packages.
package testdb

import (
	"fmt"
	"sync/atomic"

	"notesapi/database"
)

var counter atomic.Int64

// NewInMemory returns a migrated, isolated in-memory store. The caller closes it.
func NewInMemory(t interface {
	Fatalf(format string, args ...any)
}) *database.Store {
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", counter.Add(1))
	s, err := database.InitDB(name, database.Migrations())
	if err != nil {
		t.Fatalf("failed to create in-memory database: %v", err)
	}
	return s
}
