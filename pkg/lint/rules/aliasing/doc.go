// Package aliasing provides lint rules for column and table aliases.
//
// Rules in this package:
//   - unaliased-aggregate: function and cast columns carry an alias
//   - no-table-alias-without-join: table aliases follow the alias policy
package aliasing
