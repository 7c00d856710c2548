package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/rewear?sslmode=disable":   "pgx5://u:p@db:5432/rewear?sslmode=disable",
		"postgresql://u:p@db:5432/rewear?sslmode=disable": "pgx5://u:p@db:5432/rewear?sslmode=disable",
		"pgx5://db/rewear": "pgx5://db/rewear",
	}
	for in, want := range cases {
		got, err := migrationURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := migrationURL("host=db user=u dbname=rewear")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
