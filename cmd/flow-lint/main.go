// Command flow-lint runs static analysis on flow API usage.
//
// Usage:
//
//	flow-lint ./...
//
// This tool detects common mistakes when using the flow package:
//   - Empty string literals passed to Registry.Task() / Registry.Entry()
//   - A nil literal passed as the task function
//   - The same input handle declared twice
//   - flow.New() called with no end goals
package main

import (
	"github.com/example/flowlite/pkg/flow/lint"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(lint.Analyzer)
}
