package testsupport

import "testing"

func TestSQLiteMemoryDSN(t *testing.T) {
	cases := map[string]string{
		"TestStore/nested case": "file:TestStore_nested_case?mode=memory&cache=shared",
		"  ":                    "file:templatefn?mode=memory&cache=shared",
	}
	for name, want := range cases {
		if got := SQLiteMemoryDSN(name); got != want {
			t.Fatalf("SQLiteMemoryDSN(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNewSQLiteMemoryDBSharesState(t *testing.T) {
	first, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer first.Close()
	if _, err := first.Exec("CREATE TABLE shared_rows (id INTEGER)"); err != nil {
		t.Fatalf("create: %v", err)
	}

	second, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer second.Close()
	if _, err := second.Exec("INSERT INTO shared_rows (id) VALUES (1)"); err != nil {
		t.Fatalf("expected shared table, got %v", err)
	}
}
