// Package convention provides lint rules for SQL conventions.
//
// Rules in this package:
//   - quote-style: string literals use the configured quote character
//   - explicit-boolean-comparison: boolean columns are compared to TRUE/FALSE
//   - not-equal: prefer != over <>
//   - count-rows: prefer COUNT(*) over COUNT(1)
package convention
