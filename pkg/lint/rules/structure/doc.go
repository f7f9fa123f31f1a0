// Package structure provides lint rules about query structure: joins,
// grouping, CTEs and the final select.
//
// Rules in this package:
//   - explicit-join-type: joins name their type
//   - join-condition-order: ON conditions reference the earlier table first
//   - group-by-name-or-number: GROUP BY uses names or ordinals, not both
//   - group-by-order: grouping columns come before aggregates
//   - cte-over-subquery: prefer CTEs to subqueries in FROM and JOIN
//   - final-select-star: a query with CTEs ends in SELECT * FROM the last one
package structure
