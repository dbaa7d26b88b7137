package ogm //nolint:testpackage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
)

func TestValueToJSON(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	got := valueToJSON(map[string]any{
		"at":       at,
		"location": dbtype.Point2D{X: 1, Y: 2, SpatialRefId: 7203},
		"peak":     dbtype.Point3D{X: 1, Y: 2, Z: 3, SpatialRefId: 9157},
		"tags":     []any{"a", int64(1)},
		"plain":    "x",
	})

	want := map[string]any{
		"at":       "2024-05-01T12:30:00Z",
		"location": map[string]any{"srid": uint32(7203), "x": 1.0, "y": 2.0},
		"peak":     map[string]any{"srid": uint32(9157), "x": 1.0, "y": 2.0, "z": 3.0},
		"tags":     []any{"a", int64(1)},
		"plain":    "x",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("valueToJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "4:db:1", identityString("4:db:1"))
	assert.Equal(t, "42", identityString(int64(42)))
	assert.Equal(t, "7", identityString(7))
	assert.Empty(t, identityString(nil))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "name", quoteIdent("name"))
	assert.Equal(t, "`first name`", quoteIdent("first name"))
	assert.Equal(t, "`a``b`", quoteIdent("a`b"))
	assert.Equal(t, ":Person:`Film Noir`", labelPattern([]string{"Person", "Film Noir"}))
}
