package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleStatement(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users`)
	require.NoError(t, err)
	require.NotNil(t, stmt)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(`SELEC * FORM x`)
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(``)
	require.Error(t, err)
}

func TestParse_MultiStatement(t *testing.T) {
	_, err := Parse(`SELECT 1; SELECT 2`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one statement")
}

func TestCTEs_DeclarationOrder(t *testing.T) {
	stmt, err := Parse(`
		WITH
			first AS (SELECT * FROM a),
			second AS (SELECT * FROM first)
		SELECT * FROM second`)
	require.NoError(t, err)

	ctes := stmt.CTEs()
	require.Len(t, ctes, 2)
	assert.Equal(t, "first", ctes[0].Name)
	assert.Equal(t, "second", ctes[1].Name)
}

func TestCTEs_None(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users`)
	require.NoError(t, err)
	assert.Empty(t, stmt.CTEs())
}

func TestCTEs_AttachedToInsert(t *testing.T) {
	stmt, err := Parse(`
		WITH filtered AS (SELECT * FROM orders)
		INSERT INTO report SELECT * FROM filtered`)
	require.NoError(t, err)

	ctes := stmt.CTEs()
	require.Len(t, ctes, 1)
	assert.Equal(t, "filtered", ctes[0].Name)
}

func TestCTEs_AttachedToCreateTableAs(t *testing.T) {
	stmt, err := Parse(`
		CREATE TABLE report AS
		WITH filtered AS (SELECT * FROM orders)
		SELECT * FROM filtered`)
	require.NoError(t, err)

	ctes := stmt.CTEs()
	require.Len(t, ctes, 1)
	assert.Equal(t, "filtered", ctes[0].Name)
}

func TestWriteTarget_Insert(t *testing.T) {
	stmt, err := Parse(`INSERT INTO sales_summary SELECT * FROM raw_sales`)
	require.NoError(t, err)

	target, ok := stmt.WriteTarget()
	require.True(t, ok)
	assert.Equal(t, "sales_summary", target)
}

func TestWriteTarget_CreateTableAs(t *testing.T) {
	stmt, err := Parse(`CREATE TABLE report AS SELECT * FROM raw_data`)
	require.NoError(t, err)

	target, ok := stmt.WriteTarget()
	require.True(t, ok)
	assert.Equal(t, "report", target)
}

func TestWriteTarget_Qualified(t *testing.T) {
	stmt, err := Parse(`INSERT INTO analytics.daily_rollup SELECT * FROM events`)
	require.NoError(t, err)

	target, ok := stmt.WriteTarget()
	require.True(t, ok)
	assert.Equal(t, "analytics.daily_rollup", target)
}

func TestWriteTarget_None(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM users`)
	require.NoError(t, err)

	_, ok := stmt.WriteTarget()
	assert.False(t, ok)
}

func TestWriteTarget_LastWins(t *testing.T) {
	// Writable CTE: two write nodes in one statement. The last one in walk
	// order (statement first, then its WITH clause) wins.
	stmt, err := Parse(`
		WITH moved AS (INSERT INTO archive SELECT * FROM live RETURNING *)
		INSERT INTO audit_log SELECT * FROM moved`)
	require.NoError(t, err)

	target, ok := stmt.WriteTarget()
	require.True(t, ok)
	assert.Equal(t, "archive", target)
}

func TestPrimaryBody_ExcludesOwnWithClause(t *testing.T) {
	stmt, err := Parse(`
		CREATE TABLE report AS
		WITH filtered AS (SELECT * FROM orders)
		SELECT * FROM filtered`)
	require.NoError(t, err)

	body, ok := stmt.PrimaryBody()
	require.True(t, ok)

	tables := Tables(body)
	assert.Equal(t, []string{"filtered"}, tables, "CTE bodies are traced separately")
}

func TestPrimaryBody_BareSelect(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM a JOIN b ON a.id = b.id`)
	require.NoError(t, err)

	body, ok := stmt.PrimaryBody()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, Tables(body))
}

func TestTables_CTEBody(t *testing.T) {
	stmt, err := Parse(`
		WITH joined AS (
			SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id
		)
		SELECT * FROM joined`)
	require.NoError(t, err)

	ctes := stmt.CTEs()
	require.Len(t, ctes, 1)
	assert.ElementsMatch(t, []string{"orders", "customers"}, Tables(ctes[0].Body))
}

func TestTables_SubqueryAndSetOps(t *testing.T) {
	stmt, err := Parse(`
		INSERT INTO combined
		SELECT id FROM table_a WHERE id IN (SELECT id FROM table_c)
		UNION
		SELECT id FROM table_b`)
	require.NoError(t, err)

	body, ok := stmt.PrimaryBody()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"table_a", "table_b", "table_c"}, Tables(body))
}

func TestTables_DuplicatesPreserved(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM t a JOIN t b ON a.id = b.id`)
	require.NoError(t, err)

	body, ok := stmt.PrimaryBody()
	require.True(t, ok)
	assert.Equal(t, []string{"t", "t"}, Tables(body))
}

func TestTables_DerivedTable(t *testing.T) {
	stmt, err := Parse(`SELECT * FROM (SELECT * FROM inner_table) sub`)
	require.NoError(t, err)

	body, ok := stmt.PrimaryBody()
	require.True(t, ok)
	assert.Equal(t, []string{"inner_table"}, Tables(body))
}
