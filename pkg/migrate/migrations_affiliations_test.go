package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAffiliationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_affiliations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no affiliations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS affiliation_requests",
		"UNIQUE (artist_id, shop_id)",
		"CREATE TABLE IF NOT EXISTS affiliations",
		"UNIQUE (artist_id)",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("migration missing %q", check)
		}
	}

	// The pair constraint must be role-resolved, not direction-specific:
	// a shop->artist request and an artist->shop request between the same
	// two accounts would otherwise both be accepted.
	if strings.Contains(content, "UNIQUE (from_user_id, to_user_id)") {
		t.Fatal("request uniqueness must be on (artist_id, shop_id), not the send direction")
	}
}

func TestFollowsMigrationPreventsSelfFollow(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_follows.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no follows migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	if !strings.Contains(string(data), "CHECK (follower_id <> followee_id)") {
		t.Fatal("follows migration missing self-follow check")
	}
}
