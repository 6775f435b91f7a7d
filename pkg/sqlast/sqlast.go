// Package sqlast adapts the pg_query parse tree to the narrow surface the
// lineage resolver needs: top-level CTE enumeration, write-target discovery,
// primary query body location, and table-reference collection within a
// subtree. Callers never touch raw parse nodes outside this package.
package sqlast

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Statement is a parsed single SQL statement.
type Statement struct {
	root *pg_query.Node
}

// Query is an opaque handle to a traceable subtree (a CTE body or the
// statement's primary query body).
type Query struct {
	node *pg_query.Node

	// excludeWith suppresses descent into the root node's own WITH clause.
	// Set for the primary body, whose CTEs are traced separately.
	excludeWith bool
}

// CTE is one common table expression declared in the statement's WITH clause.
type CTE struct {
	Name string
	Body *Query
}

// Parse parses exactly one SQL statement. Multi-statement input is rejected
// rather than silently truncated.
func Parse(sql string) (*Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse SQL: %w", err)
	}
	if len(result.Stmts) == 0 {
		return nil, fmt.Errorf("parse SQL: no statement found")
	}
	if len(result.Stmts) > 1 {
		return nil, fmt.Errorf("parse SQL: expected one statement, got %d", len(result.Stmts))
	}
	stmt := result.Stmts[0].Stmt
	if stmt == nil {
		return nil, fmt.Errorf("parse SQL: empty statement")
	}
	return &Statement{root: stmt}, nil
}

// CTEs returns the statement's top-level CTE definitions in declaration
// order. Only WITH clauses attached to the statement itself are considered;
// CTEs nested inside other CTE bodies are part of those bodies.
func (s *Statement) CTEs() []CTE {
	var clauses []*pg_query.WithClause

	switch n := s.root.Node.(type) {
	case *pg_query.Node_SelectStmt:
		if n.SelectStmt.WithClause != nil {
			clauses = append(clauses, n.SelectStmt.WithClause)
		}
	case *pg_query.Node_InsertStmt:
		if n.InsertStmt.WithClause != nil {
			clauses = append(clauses, n.InsertStmt.WithClause)
		}
		// WITH may also precede the inner SELECT: INSERT INTO t WITH x AS (...) SELECT ...
		if sel := selectOf(n.InsertStmt.SelectStmt); sel != nil && sel.WithClause != nil {
			clauses = append(clauses, sel.WithClause)
		}
	case *pg_query.Node_CreateTableAsStmt:
		if sel := selectOf(n.CreateTableAsStmt.Query); sel != nil && sel.WithClause != nil {
			clauses = append(clauses, sel.WithClause)
		}
	}

	var ctes []CTE
	for _, wc := range clauses {
		for _, item := range wc.Ctes {
			cte, ok := item.Node.(*pg_query.Node_CommonTableExpr)
			if !ok || cte.CommonTableExpr.Ctequery == nil {
				continue
			}
			ctes = append(ctes, CTE{
				Name: cte.CommonTableExpr.Ctename,
				Body: &Query{node: cte.CommonTableExpr.Ctequery},
			})
		}
	}
	return ctes
}

// WriteTarget returns the destination table of the statement's INSERT or
// CREATE TABLE AS node, or false if the statement writes nothing. When more
// than one write node exists (writable CTEs), the last one in walk order
// wins.
func (s *Statement) WriteTarget() (string, bool) {
	var name string
	var found bool
	walkWriteNodes(s.root, func(target string) {
		name = target
		found = true
	})
	return name, found
}

// PrimaryBody returns the statement's outermost query body, independent of
// any CTEs: for INSERT the attached SELECT, for CREATE TABLE AS the
// AS-query, for a bare SELECT the statement itself. Table collection on the
// returned Query skips the body's own WITH clause.
func (s *Statement) PrimaryBody() (*Query, bool) {
	switch n := s.root.Node.(type) {
	case *pg_query.Node_SelectStmt:
		return &Query{node: s.root, excludeWith: true}, true
	case *pg_query.Node_InsertStmt:
		if n.InsertStmt.SelectStmt != nil {
			return &Query{node: n.InsertStmt.SelectStmt, excludeWith: true}, true
		}
	case *pg_query.Node_CreateTableAsStmt:
		if n.CreateTableAsStmt.Query != nil {
			return &Query{node: n.CreateTableAsStmt.Query, excludeWith: true}, true
		}
	}
	return nil, false
}

// Tables returns every table reference in the subtree, in walk order, with
// duplicates preserved. Names are rendered as written, with any catalog and
// schema qualification joined by dots.
func Tables(q *Query) []string {
	if q == nil || q.node == nil {
		return nil
	}
	var tables []string
	c := &tableCollector{out: &tables}
	if sel := selectOf(q.node); sel != nil && q.excludeWith {
		c.selectStmt(sel, false)
	} else {
		c.node(q.node)
	}
	return tables
}

// selectOf unwraps a node to its SelectStmt, or nil.
func selectOf(node *pg_query.Node) *pg_query.SelectStmt {
	if node == nil {
		return nil
	}
	if n, ok := node.Node.(*pg_query.Node_SelectStmt); ok {
		return n.SelectStmt
	}
	return nil
}

// qualifiedName renders a RangeVar's name as written: catalog.schema.relation
// with empty parts dropped. No case folding beyond what the parser applies.
func qualifiedName(rv *pg_query.RangeVar) string {
	name := rv.Relname
	if rv.Schemaname != "" {
		name = rv.Schemaname + "." + name
	}
	if rv.Catalogname != "" {
		name = rv.Catalogname + "." + name
	}
	return name
}

// walkWriteNodes visits every INSERT and CREATE TABLE AS node in the tree in
// pre-order and reports its destination table name.
func walkWriteNodes(node *pg_query.Node, report func(string)) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_InsertStmt:
		if n.InsertStmt.Relation != nil {
			report(qualifiedName(n.InsertStmt.Relation))
		}
		walkWithClause(n.InsertStmt.WithClause, report)
		walkWriteNodes(n.InsertStmt.SelectStmt, report)

	case *pg_query.Node_CreateTableAsStmt:
		if n.CreateTableAsStmt.Into != nil && n.CreateTableAsStmt.Into.Rel != nil {
			report(qualifiedName(n.CreateTableAsStmt.Into.Rel))
		}
		walkWriteNodes(n.CreateTableAsStmt.Query, report)

	case *pg_query.Node_SelectStmt:
		sel := n.SelectStmt
		walkWithClause(sel.WithClause, report)
		if sel.Larg != nil {
			walkWriteNodes(&pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: sel.Larg}}, report)
		}
		if sel.Rarg != nil {
			walkWriteNodes(&pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: sel.Rarg}}, report)
		}
	}
}

func walkWithClause(wc *pg_query.WithClause, report func(string)) {
	if wc == nil {
		return
	}
	for _, item := range wc.Ctes {
		if cte, ok := item.Node.(*pg_query.Node_CommonTableExpr); ok {
			walkWriteNodes(cte.CommonTableExpr.Ctequery, report)
		}
	}
}

// tableCollector walks parse nodes collecting table references. The node
// kinds handled here form the closed set relevant to table discovery;
// anything else contributes nothing.
type tableCollector struct {
	out *[]string
}

func (c *tableCollector) add(name string) {
	if name != "" {
		*c.out = append(*c.out, name)
	}
}

func (c *tableCollector) node(node *pg_query.Node) {
	if node == nil {
		return
	}

	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		c.selectStmt(n.SelectStmt, true)

	case *pg_query.Node_InsertStmt:
		// A writable CTE body: the write destination counts as a reference
		// within the owning subtree.
		ins := n.InsertStmt
		if ins.Relation != nil {
			c.add(qualifiedName(ins.Relation))
		}
		c.node(ins.SelectStmt)
		c.nodes(ins.ReturningList)

	case *pg_query.Node_UpdateStmt:
		upd := n.UpdateStmt
		if upd.Relation != nil {
			c.add(qualifiedName(upd.Relation))
		}
		c.nodes(upd.FromClause)
		c.node(upd.WhereClause)
		c.nodes(upd.ReturningList)

	case *pg_query.Node_DeleteStmt:
		del := n.DeleteStmt
		if del.Relation != nil {
			c.add(qualifiedName(del.Relation))
		}
		c.nodes(del.UsingClause)
		c.node(del.WhereClause)
		c.nodes(del.ReturningList)

	case *pg_query.Node_RangeVar:
		c.add(qualifiedName(n.RangeVar))

	case *pg_query.Node_JoinExpr:
		c.node(n.JoinExpr.Larg)
		c.node(n.JoinExpr.Rarg)
		c.node(n.JoinExpr.Quals)

	case *pg_query.Node_RangeSubselect:
		c.node(n.RangeSubselect.Subquery)

	case *pg_query.Node_RangeFunction:
		// Table-valued functions are not table references.

	case *pg_query.Node_CommonTableExpr:
		c.node(n.CommonTableExpr.Ctequery)

	case *pg_query.Node_ResTarget:
		c.node(n.ResTarget.Val)

	case *pg_query.Node_SubLink:
		c.node(n.SubLink.Testexpr)
		c.node(n.SubLink.Subselect)

	case *pg_query.Node_BoolExpr:
		c.nodes(n.BoolExpr.Args)

	case *pg_query.Node_AExpr:
		c.node(n.AExpr.Lexpr)
		c.node(n.AExpr.Rexpr)

	case *pg_query.Node_FuncCall:
		c.nodes(n.FuncCall.Args)

	case *pg_query.Node_TypeCast:
		c.node(n.TypeCast.Arg)

	case *pg_query.Node_CaseExpr:
		c.node(n.CaseExpr.Arg)
		c.nodes(n.CaseExpr.Args)
		c.node(n.CaseExpr.Defresult)

	case *pg_query.Node_CaseWhen:
		c.node(n.CaseWhen.Expr)
		c.node(n.CaseWhen.Result)

	case *pg_query.Node_CoalesceExpr:
		c.nodes(n.CoalesceExpr.Args)

	case *pg_query.Node_NullTest:
		c.node(n.NullTest.Arg)

	case *pg_query.Node_RowExpr:
		c.nodes(n.RowExpr.Args)

	case *pg_query.Node_List:
		c.nodes(n.List.Items)
	}
}

func (c *tableCollector) nodes(list []*pg_query.Node) {
	for _, n := range list {
		c.node(n)
	}
}

// selectStmt walks a SELECT in clause order. includeWith is false only for
// the top of a primary body, whose CTEs are owned by the statement.
func (c *tableCollector) selectStmt(sel *pg_query.SelectStmt, includeWith bool) {
	if sel == nil {
		return
	}

	if includeWith && sel.WithClause != nil {
		for _, item := range sel.WithClause.Ctes {
			c.node(item)
		}
	}

	// Set operations: both arms share the outer WITH handling above.
	if sel.Larg != nil {
		c.selectStmt(sel.Larg, true)
	}
	if sel.Rarg != nil {
		c.selectStmt(sel.Rarg, true)
	}

	c.nodes(sel.TargetList)
	c.nodes(sel.FromClause)
	c.node(sel.WhereClause)
	c.node(sel.HavingClause)
	c.nodes(sel.ValuesLists)
}
