package search

import "errors"

// ErrNodeBudgetExceeded is returned by Detect when one subset's
// enumeration visits more schedule positions than the configured node
// budget without reaching a verdict, the resource-exhaustion guard
// spec.md §7 calls out as a necessary safety valve on graphs with heavy
// fan-out.
var ErrNodeBudgetExceeded = errors.New("search: node budget exceeded during enumeration")
