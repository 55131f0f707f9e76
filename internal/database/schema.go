package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"strings"
)

//go:embed schema/*.cql
var schemaFS embed.FS

// schemaFiles maps each keyspace role to the CQL file that creates its tables.
var schemaFiles = map[string]string{
	RoleCatalog:   "schema/catalog.cql",
	RoleCustomers: "schema/customers.cql",
	RoleOrders:    "schema/orders.cql",
}

// Statements splits a CQL script on ';', dropping blank statements and "--" comment lines.
func Statements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureSchema creates missing tables and indexes in every keyspace.
// Keyspaces themselves must already exist.
func (sm *ScyllaManager) EnsureSchema(ctx context.Context) error {
	for role, file := range schemaFiles {
		script, err := schemaFS.ReadFile(file)
		if err != nil {
			return err
		}
		session, err := sm.Session(role)
		if err != nil {
			return err
		}
		for _, stmt := range Statements(string(script)) {
			if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
				return fmt.Errorf("apply %s: %w", file, err)
			}
		}
		log.Printf("✅ Schema applied for %s", role)
	}
	return nil
}
