package archive

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestInsertArgsShape(t *testing.T) {
	rec := sampleRecord("m1", 90*time.Second)
	rec.CapturedWhite = nil
	args := insertArgs(rec)
	if n := strings.Count(strings.Split(schemaSQL, "CREATE INDEX")[0], "\n\t"); n != len(args) {
		t.Fatalf("schema has %d columns, insert binds %d", n, len(args))
	}
	white, err := args[7].(driver.Valuer).Value()
	if err != nil {
		t.Fatalf("captured_white value: %v", err)
	}
	if white != "{}" {
		t.Fatalf("nil capture list should bind as empty array, got %v", white)
	}
	black, _ := pq.Array([]string{"p"}).Value()
	if got, _ := args[8].(driver.Valuer).Value(); got != black {
		t.Fatalf("captured_black = %v, want %v", got, black)
	}
	if args[13] != int64(90000) {
		t.Fatalf("duration_ms = %v", args[13])
	}
}

func TestPostgresConstructors(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
	if _, err := NewPostgresStore(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
