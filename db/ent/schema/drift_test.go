package schema

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTable = regexp.MustCompile(`(?i)^CREATE TABLE IF NOT EXISTS (\w+) \($`)

// migrationColumns reads column names per table from a migration file.
func migrationColumns(t *testing.T, path string) map[string][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tables := map[string][]string{}
	var current string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := createTable.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		if current == "" || line == "" {
			continue
		}
		if strings.HasPrefix(line, ");") {
			current = ""
			continue
		}
		name := strings.Fields(line)[0]
		switch strings.ToUpper(name) {
		case "UNIQUE", "PRIMARY", "CHECK", "FOREIGN", "CONSTRAINT":
			continue
		}
		tables[current] = append(tables[current], name)
	}
	require.NoError(t, sc.Err())
	return tables
}

func schemaColumns(fields []ent.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		d := f.Descriptor()
		if d.StorageKey != "" {
			out = append(out, d.StorageKey)
			continue
		}
		out = append(out, d.Name)
	}
	return out
}

func tableName(s ent.Interface) string {
	for _, a := range s.Annotations() {
		if ann, ok := a.(entsql.Annotation); ok {
			return ann.Table
		}
	}
	return ""
}

func TestSchemaMatchesMigrations(t *testing.T) {
	schemas := []ent.Interface{Document{}, Item{}, ItemSpec{}, Equipment{}, MatchSuggestion{}, ProcessLog{}}

	for _, dialect := range []string{"postgres", "sqlite"} {
		t.Run(dialect, func(t *testing.T) {
			path := filepath.Join("..", "..", "..", "internal", "repository", "migrations", dialect, "000001_init.up.sql")
			tables := migrationColumns(t, path)
			require.Len(t, tables, len(schemas))

			for _, s := range schemas {
				name := tableName(s)
				require.NotEmpty(t, name)
				cols, ok := tables[name]
				require.True(t, ok, "table %s missing from migration", name)
				assert.ElementsMatch(t, schemaColumns(s.Fields()), cols, "table %s", name)
			}
		})
	}
}

func TestEnumValidators(t *testing.T) {
	status := Document{}.Fields()[4].Descriptor()
	require.Equal(t, "status", status.Name)
	require.NotEmpty(t, status.Validators)
	validate := status.Validators[0].(func(string) error)
	assert.NoError(t, validate("extracted"))
	assert.Error(t, validate("done"))
}
