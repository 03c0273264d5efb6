// Command trueflow reviews the semantic diff of a repository block by
// block, tracking which blocks have been approved, rejected, or left
// unreviewed across commits.
package main

import (
	"github.com/trueflow-dev/trueflow/cli"
)

func main() {
	cli.Execute()
}
