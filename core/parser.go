package core

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"stagedb/plan"
)

// SQLFrontend converts a supported subset of SELECT statements into the
// logical operator tree the planner consumes. The subset covers single
// tables, equi-joins (ON a = b, AND-chained), WHERE, GROUP BY, and
// aggregate calls; anything else is a descriptive error. The planner never
// sees SQL, only the tree.
type SQLFrontend struct {
	defaultCatalog string
	defaultSchema  string
}

// NewSQLFrontend creates a frontend resolving unqualified tables against
// the given defaults
func NewSQLFrontend(defaultCatalog, defaultSchema string) *SQLFrontend {
	return &SQLFrontend{
		defaultCatalog: defaultCatalog,
		defaultSchema:  defaultSchema,
	}
}

// Parse builds a logical tree with an output root from one SELECT
// statement.
func (f *SQLFrontend) Parse(sql string) (plan.Node, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}
	if len(result.Stmts) == 0 {
		return nil, fmt.Errorf("no statements found in SQL")
	}

	GetTracer().Debug(TraceComponentParser, "parsing statement", TraceContext("sql", sql))

	selectStmt := result.Stmts[0].Stmt.GetSelectStmt()
	if selectStmt == nil {
		return nil, fmt.Errorf("unsupported statement type: only SELECT is supported")
	}
	if selectStmt.Op != pg_query.SetOperation_SETOP_NONE {
		return nil, fmt.Errorf("set operations are not supported")
	}
	if len(selectStmt.FromClause) == 0 {
		return nil, fmt.Errorf("SELECT without FROM is not supported")
	}
	if len(selectStmt.FromClause) > 1 {
		return nil, fmt.Errorf("comma-joined FROM items are not supported, use explicit JOIN")
	}

	root, _, err := f.buildFromItem(selectStmt.FromClause[0])
	if err != nil {
		return nil, err
	}

	if selectStmt.WhereClause != nil {
		predicate, err := formatExpression(selectStmt.WhereClause)
		if err != nil {
			return nil, err
		}
		if scan, ok := root.(*plan.ScanNode); ok {
			// Single-table predicate: offer it to the connector for
			// pushdown instead of forcing a filter node.
			scan.Constraint = predicate
		} else {
			root = &plan.FilterNode{Source: root, Predicate: predicate}
		}
	}

	columns, aggregates, err := f.parseTargets(selectStmt.TargetList)
	if err != nil {
		return nil, err
	}

	keys, err := parseGroupBy(selectStmt.GroupClause)
	if err != nil {
		return nil, err
	}

	if len(aggregates) > 0 || len(keys) > 0 {
		if len(aggregates) == 0 {
			return nil, fmt.Errorf("GROUP BY without aggregate functions is not supported")
		}
		root = &plan.AggregateNode{
			Source:     root,
			Keys:       keys,
			Aggregates: aggregates,
			Step:       plan.StepFinal,
		}
	}

	return &plan.OutputNode{Source: root, Columns: columns}, nil
}

// buildFromItem builds the tree for one FROM item and returns the set of
// table aliases bound inside it, used to orient join keys.
func (f *SQLFrontend) buildFromItem(node *pg_query.Node) (plan.Node, map[string]bool, error) {
	if rangeVar := node.GetRangeVar(); rangeVar != nil {
		scan := f.scanFor(rangeVar)
		aliases := map[string]bool{scan.Table: true}
		if rangeVar.Alias != nil {
			aliases[rangeVar.Alias.Aliasname] = true
		}
		return scan, aliases, nil
	}

	joinExpr := node.GetJoinExpr()
	if joinExpr == nil {
		return nil, nil, fmt.Errorf("unsupported FROM clause item")
	}

	left, leftAliases, err := f.buildFromItem(joinExpr.Larg)
	if err != nil {
		return nil, nil, err
	}
	right, rightAliases, err := f.buildFromItem(joinExpr.Rarg)
	if err != nil {
		return nil, nil, err
	}

	aliases := make(map[string]bool, len(leftAliases)+len(rightAliases))
	for a := range leftAliases {
		aliases[a] = true
	}
	for a := range rightAliases {
		aliases[a] = true
	}

	if joinExpr.Quals == nil {
		if joinExpr.Jointype != pg_query.JoinType_JOIN_INNER {
			return nil, nil, fmt.Errorf("outer join without ON condition is not supported")
		}
		return &plan.CrossJoinNode{Left: left, Right: right}, aliases, nil
	}

	criteria, err := parseJoinCriteria(joinExpr.Quals, rightAliases)
	if err != nil {
		return nil, nil, err
	}

	var kind plan.JoinKind
	switch joinExpr.Jointype {
	case pg_query.JoinType_JOIN_INNER:
		kind = plan.JoinInner
	case pg_query.JoinType_JOIN_LEFT:
		kind = plan.JoinLeft
	case pg_query.JoinType_JOIN_RIGHT:
		kind = plan.JoinRight
	case pg_query.JoinType_JOIN_FULL:
		kind = plan.JoinFull
	default:
		return nil, nil, fmt.Errorf("unsupported join type %s", joinExpr.Jointype)
	}

	return &plan.JoinNode{
		Kind:     kind,
		Left:     left,
		Right:    right,
		Criteria: criteria,
	}, aliases, nil
}

func (f *SQLFrontend) scanFor(rangeVar *pg_query.RangeVar) *plan.ScanNode {
	scan := &plan.ScanNode{
		Catalog: f.defaultCatalog,
		Schema:  f.defaultSchema,
		Table:   rangeVar.Relname,
	}
	if rangeVar.Schemaname != "" {
		scan.Schema = rangeVar.Schemaname
	}
	if rangeVar.Catalogname != "" {
		scan.Catalog = rangeVar.Catalogname
	}
	return scan
}

// parseJoinCriteria flattens AND-chained equality conditions into equi-key
// pairs oriented left/right by the right side's aliases.
func parseJoinCriteria(quals *pg_query.Node, rightAliases map[string]bool) ([]plan.JoinClause, error) {
	if boolExpr := quals.GetBoolExpr(); boolExpr != nil {
		if boolExpr.Boolop != pg_query.BoolExprType_AND_EXPR {
			return nil, fmt.Errorf("only AND-combined join conditions are supported")
		}
		var criteria []plan.JoinClause
		for _, arg := range boolExpr.Args {
			sub, err := parseJoinCriteria(arg, rightAliases)
			if err != nil {
				return nil, err
			}
			criteria = append(criteria, sub...)
		}
		return criteria, nil
	}

	aExpr := quals.GetAExpr()
	if aExpr == nil {
		return nil, fmt.Errorf("unsupported join condition")
	}
	if op := operatorName(aExpr); op != "=" {
		return nil, fmt.Errorf("only equi-join conditions are supported, got %q", op)
	}

	leftQualifier, leftColumn, err := columnRefParts(aExpr.Lexpr)
	if err != nil {
		return nil, err
	}
	rightQualifier, rightColumn, err := columnRefParts(aExpr.Rexpr)
	if err != nil {
		return nil, err
	}

	clause := plan.JoinClause{Left: leftColumn, Right: rightColumn}
	if rightAliases[leftQualifier] && !rightAliases[rightQualifier] {
		clause = plan.JoinClause{Left: rightColumn, Right: leftColumn}
	}
	return []plan.JoinClause{clause}, nil
}

// parseTargets splits the SELECT list into plain output columns and
// aggregate calls.
func (f *SQLFrontend) parseTargets(targets []*pg_query.Node) ([]string, []plan.AggregateCall, error) {
	var columns []string
	var aggregates []plan.AggregateCall

	for _, target := range targets {
		resTarget := target.GetResTarget()
		if resTarget == nil || resTarget.Val == nil {
			return nil, nil, fmt.Errorf("unsupported SELECT list item")
		}

		if funcCall := resTarget.Val.GetFuncCall(); funcCall != nil {
			if funcCall.Over != nil {
				return nil, nil, fmt.Errorf("window functions are not supported")
			}
			call, err := parseAggregateCall(funcCall, resTarget.Name)
			if err != nil {
				return nil, nil, err
			}
			aggregates = append(aggregates, call)
			columns = append(columns, call.Alias)
			continue
		}

		if columnRef := resTarget.Val.GetColumnRef(); columnRef != nil {
			if isStar(columnRef) {
				columns = append(columns, "*")
				continue
			}
			_, name, err := columnRefParts(resTarget.Val)
			if err != nil {
				return nil, nil, err
			}
			if resTarget.Name != "" {
				name = resTarget.Name
			}
			columns = append(columns, name)
			continue
		}

		return nil, nil, fmt.Errorf("unsupported expression in SELECT list")
	}
	return columns, aggregates, nil
}

func parseAggregateCall(funcCall *pg_query.FuncCall, alias string) (plan.AggregateCall, error) {
	if len(funcCall.Funcname) == 0 {
		return plan.AggregateCall{}, fmt.Errorf("function call without a name")
	}
	name := strings.ToUpper(funcCall.Funcname[len(funcCall.Funcname)-1].GetString_().GetSval())

	argument := "*"
	if !funcCall.AggStar {
		if len(funcCall.Args) != 1 {
			return plan.AggregateCall{}, fmt.Errorf("%s: exactly one argument expected", name)
		}
		_, column, err := columnRefParts(funcCall.Args[0])
		if err != nil {
			return plan.AggregateCall{}, fmt.Errorf("%s: %w", name, err)
		}
		argument = column
	}

	if alias == "" {
		alias = strings.ToLower(name)
	}
	return plan.AggregateCall{Function: name, Argument: argument, Alias: alias}, nil
}

func parseGroupBy(groupClause []*pg_query.Node) ([]string, error) {
	var keys []string
	for _, group := range groupClause {
		_, column, err := columnRefParts(group)
		if err != nil {
			return nil, fmt.Errorf("GROUP BY: %w", err)
		}
		keys = append(keys, column)
	}
	return keys, nil
}

// columnRefParts returns the qualifier (alias or table, may be empty) and
// bare column name of a column reference.
func columnRefParts(node *pg_query.Node) (string, string, error) {
	columnRef := node.GetColumnRef()
	if columnRef == nil {
		return "", "", fmt.Errorf("expected a column reference")
	}
	fields := columnRef.Fields
	switch len(fields) {
	case 1:
		return "", fields[0].GetString_().GetSval(), nil
	case 2:
		return fields[0].GetString_().GetSval(), fields[1].GetString_().GetSval(), nil
	default:
		return "", "", fmt.Errorf("unsupported column reference depth %d", len(fields))
	}
}

func isStar(columnRef *pg_query.ColumnRef) bool {
	for _, field := range columnRef.Fields {
		if field.GetAStar() != nil {
			return true
		}
	}
	return false
}

func operatorName(aExpr *pg_query.A_Expr) string {
	if len(aExpr.Name) == 0 {
		return ""
	}
	return aExpr.Name[0].GetString_().GetSval()
}

// formatExpression renders a WHERE expression back to a compact predicate
// summary for connector pushdown. Column refs, constants, comparison
// operators and AND/OR chains are covered; anything richer is rejected.
func formatExpression(node *pg_query.Node) (string, error) {
	if boolExpr := node.GetBoolExpr(); boolExpr != nil {
		var op string
		switch boolExpr.Boolop {
		case pg_query.BoolExprType_AND_EXPR:
			op = " AND "
		case pg_query.BoolExprType_OR_EXPR:
			op = " OR "
		default:
			return "", fmt.Errorf("unsupported boolean operator in WHERE")
		}
		parts := make([]string, len(boolExpr.Args))
		for i, arg := range boolExpr.Args {
			part, err := formatExpression(arg)
			if err != nil {
				return "", err
			}
			parts[i] = part
		}
		return "(" + strings.Join(parts, op) + ")", nil
	}

	aExpr := node.GetAExpr()
	if aExpr == nil {
		return "", fmt.Errorf("unsupported expression in WHERE")
	}
	left, err := formatOperand(aExpr.Lexpr)
	if err != nil {
		return "", err
	}
	right, err := formatOperand(aExpr.Rexpr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, operatorName(aExpr), right), nil
}

func formatOperand(node *pg_query.Node) (string, error) {
	if node == nil {
		return "", fmt.Errorf("missing operand in WHERE")
	}
	if columnRef := node.GetColumnRef(); columnRef != nil {
		_, column, err := columnRefParts(node)
		return column, err
	}
	if aConst := node.GetAConst(); aConst != nil {
		switch {
		case aConst.GetIval() != nil:
			return fmt.Sprintf("%d", aConst.GetIval().Ival), nil
		case aConst.GetFval() != nil:
			return aConst.GetFval().Fval, nil
		case aConst.GetSval() != nil:
			return fmt.Sprintf("'%s'", aConst.GetSval().Sval), nil
		case aConst.GetBoolval() != nil:
			return fmt.Sprintf("%t", aConst.GetBoolval().Boolval), nil
		}
	}
	return "", fmt.Errorf("unsupported operand in WHERE")
}
