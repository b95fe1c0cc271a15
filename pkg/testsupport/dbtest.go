package testsupport

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteMemoryDSN returns a shared-cache in-memory DSN. Connections opened with
// the same name see the same database until the last one closes.
func SQLiteMemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		name = "templatefn"
	}
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", SQLiteMemoryDSN(name))
}
