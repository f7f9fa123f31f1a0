package rules

// Import all rule subpackages to register them with the global registry.
// This file triggers all init() functions in the rule packages.
import (
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/aliasing"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/convention"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/layout"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/naming"
	_ "github.com/leapstack-labs/sqlstyle/pkg/lint/rules/structure"
)
