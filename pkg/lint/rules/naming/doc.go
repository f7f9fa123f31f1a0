// Package naming provides advisory lint rules for identifier names.
//
// Rules in this package:
//   - snake-case-identifier: identifiers are snake_case and tables plural
//   - boolean-prefix: boolean columns start with is_, has_ or does_
package naming
