//Package testutil provides shared fixtures for tests that need a real
//database behind the engines.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/lsmythe/gatekeeper/db"
	"github.com/lsmythe/gatekeeper/guildmodels"
)

//OpenTestDB opens a fresh migrated database in a per-test temporary
//directory and closes it when the test finishes.
func OpenTestDB(t *testing.T) *db.DBConnection {
	t.Helper()
	conn, err := db.Init(filepath.Join(t.TempDir(), "gatekeeper_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

//CreateGuild inserts a guild (with its default configuration) under a
//random discord id.
func CreateGuild(t *testing.T, conn *db.DBConnection) *guildmodels.Guild {
	t.Helper()
	guild, err := conn.GetOrCreateGuild(uuid.NewString(), "Test Guild")
	if err != nil {
		t.Fatalf("Failed to create test guild: %v", err)
	}
	return guild
}

//CreateMember inserts a member of the given guild under a random discord
//user id.
func CreateMember(t *testing.T, conn *db.DBConnection, guildID uint) *guildmodels.Member {
	t.Helper()
	member, err := conn.GetOrCreateMember(guildID, uuid.NewString(), "tester")
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return member
}
