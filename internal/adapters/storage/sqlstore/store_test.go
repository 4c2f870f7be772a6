package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `SELECT 1`, want: `SELECT 1`},
		{in: `SELECT * FROM pets WHERE id = ?`, want: `SELECT * FROM pets WHERE id = $1`},
		{in: `UPDATE pets SET name = ?, age = ? WHERE id = ?`, want: `UPDATE pets SET name = $1, age = $2 WHERE id = $3`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RebindDollar(tt.in))
	}
}

func TestDialect_Bind(t *testing.T) {
	q := `SELECT id FROM traits WHERE name_key = ? LIMIT ?`

	assert.Equal(t, q, Dialect{Name: "sqlite"}.bind(q), "nil Rebind keeps ? placeholders")
	assert.Equal(t,
		`SELECT id FROM traits WHERE name_key = $1 LIMIT $2`,
		Dialect{Name: "postgres", Rebind: RebindDollar}.bind(q),
	)
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)

	ns := nullString("g1")
	assert.True(t, ns.Valid)
	assert.Equal(t, "g1", ns.String)
}
