package database

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestMigrationsAreOrderedAndNamed(t *testing.T) {
	migrations := getMigrations()
	if len(migrations) == 0 {
		t.Fatal("no migrations registered")
	}

	last := 0
	for _, m := range migrations {
		if m.Version <= last {
			t.Errorf("migration %d is not after %d", m.Version, last)
		}
		last = m.Version

		for _, idx := range m.Indexes {
			if idx.Options == nil || idx.Options.Name == nil || *idx.Options.Name == "" {
				t.Errorf("migration %d has an unnamed index on %s", m.Version, m.Collection)
			}
		}
	}
}

func TestGeoCollectionsHave2dsphereIndex(t *testing.T) {
	want := map[string]bool{ComplaintsCollection: false, SOSAlertsCollection: false}

	for _, m := range getMigrations() {
		for _, idx := range m.Indexes {
			keys, ok := idx.Keys.(bson.D)
			if !ok {
				continue
			}
			for _, k := range keys {
				if k.Key == "location" && k.Value == "2dsphere" {
					want[m.Collection] = true
				}
			}
		}
	}

	for collection, found := range want {
		if !found {
			t.Errorf("%s has no 2dsphere index on location", collection)
		}
	}
}
