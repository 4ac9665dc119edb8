package repository

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Every relation the repositories query must be created by the shipped
// migration, otherwise a fresh database fails on the first request.
func TestSchemaCreatesAllQueriedTables(t *testing.T) {
	schema, err := os.ReadFile("../../migrations/schema.sql")
	require.NoError(t, err)

	for _, table := range []string{
		"workspaces",
		"users",
		"user_sessions",
		"photos",
		"photo_selections",
		"invitations",
		"subscriptions",
	} {
		require.Contains(t, string(schema), fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (", table),
			"migration must create table %s", table)
	}
}
