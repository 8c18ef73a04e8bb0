package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigboardhq/gigboard-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir failed validation: %v", err)
	}
}

func TestMirrorMigrationEnforcesPairUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_application_mirrors.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no application mirrors migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS user_gig_entries",
		"CREATE TABLE IF NOT EXISTS gig_applications",
		"CREATE UNIQUE INDEX IF NOT EXISTS user_gig_entries_user_gig_key ON user_gig_entries (user_id, gig_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS gig_applications_gig_user_key ON gig_applications (gig_id, user_id)",
		"'withdrawal_requested', 'withdrawal_processed'",
		"DROP TABLE IF EXISTS gig_applications",
		"DROP TABLE IF EXISTS user_gig_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
