package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := NormalizeDSN("planner:secret@tcp(127.0.0.1:3306)/plan")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "sql_mode=")
	assert.True(t, strings.HasPrefix(dsn, "planner:secret@tcp(127.0.0.1:3306)/plan?"))

	_, err = NormalizeDSN("not a dsn")
	assert.Error(t, err)
}

func TestMySQLDialect(t *testing.T) {
	d := NewMySQLDialect()

	upsert := d.UpsertSQL("blocks", []string{"id", "name"}, "id", []string{"name"})
	assert.Equal(t, "INSERT INTO blocks (id, name) VALUES (:id, :name) ON DUPLICATE KEY UPDATE name = VALUES(name)", upsert)

	ddl := d.CreateTableSQL("CREATE TABLE IF NOT EXISTS t (id INT);")
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS t (id INT) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", ddl)
	assert.Equal(t, "VARCHAR(64)", d.VarcharType(64))
	assert.False(t, d.ReturningID())
}
