// Package layout provides lint rules for whitespace, line breaks and
// keyword casing.
//
// Rules in this package:
//   - keyword-case: keywords match the configured case
//   - column-per-line: one select column per line
//   - star-shorthand: SELECT * is single-line only without filters or joins
//   - operator-trailing: AND/OR and comparisons end a line, never start one
//   - comma-trailing: commas follow the configured comma style
//   - paren-spacing: no spaces directly inside parentheses
//   - long-in-list: long IN lists are laid out one value per line
package layout
