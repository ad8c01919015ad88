// Package queries embeds SQL query files for the SQL store.
package queries

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var files embed.FS

// Queries holds parsed SQL queries by name.
type Queries struct {
	Schema      string
	SelectValue string
	UpsertValue string
	DeleteValue string
}

// Load loads the queries of a dialect directory ("postgres", "mysql", "sqlite").
func Load(dir string) (*Queries, error) {
	schema, err := files.ReadFile(dir + "/schema.sql")
	if err != nil {
		return nil, err
	}

	content, err := files.ReadFile(dir + "/credentials.sql")
	if err != nil {
		return nil, err
	}
	parsed := parseNamedQueries(string(content))

	q := &Queries{
		Schema:      string(schema),
		SelectValue: parsed["SelectValue"],
		UpsertValue: parsed["UpsertValue"],
		DeleteValue: parsed["DeleteValue"],
	}
	for name, v := range map[string]string{"SelectValue": q.SelectValue, "UpsertValue": q.UpsertValue, "DeleteValue": q.DeleteValue} {
		if v == "" {
			return nil, fmt.Errorf("queries: %s/credentials.sql is missing %s", dir, name)
		}
	}
	return q, nil
}

// parseNamedQueries parses SQL content with -- name: comments.
func parseNamedQueries(content string) map[string]string {
	result := make(map[string]string)

	for _, part := range strings.Split(content, "-- name:") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// First line is the query name, rest is the SQL
		lines := strings.SplitN(part, "\n", 2)
		if len(lines) < 2 {
			continue
		}

		name := strings.TrimSpace(lines[0])
		query := strings.TrimSpace(lines[1])
		if name != "" && query != "" {
			result[name] = query
		}
	}

	return result
}
