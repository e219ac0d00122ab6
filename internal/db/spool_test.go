package db

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsSchemaMismatch(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("table products has no column named hsn_code"), true},
		{errors.New("no such column: watermark"), true},
		{errors.New(`pq: column "branch_name" of relation "business_profiles" does not exist`), true},
		{errors.New("UNIQUE constraint failed: clients.id"), false},
		{errors.New("database is locked"), false},
	}
	for _, c := range cases {
		if got := IsSchemaMismatch(c.err); got != c.want {
			t.Fatalf("IsSchemaMismatch(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestSpoolWriteAppends(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cause := errors.New("table products has no column named hsn_code")
	if err := SpoolWrite("product", map[string]string{"name": "Green Tea"}, cause); err != nil {
		t.Fatalf("first spool: %v", err)
	}
	if err := SpoolWrite("client", map[string]string{"name": "Acme Traders"}, cause); err != nil {
		t.Fatalf("second spool: %v", err)
	}

	b, err := os.ReadFile(filepath.Join("data", "pending_writes.json"))
	if err != nil {
		t.Fatalf("read spool: %v", err)
	}
	var entries []spoolEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("decode spool: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both writes preserved, got %d", len(entries))
	}
	if entries[0].Entity != "product" || entries[1].Entity != "client" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[1].Error != cause.Error() {
		t.Fatalf("cause not recorded: %q", entries[1].Error)
	}
}
