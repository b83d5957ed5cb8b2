// Command plugincheck validates AI plugin manifests and lists the operations of
// the OpenAPI specs they reference.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	a := &app{}
	if err := execute(context.Background(), newRootCmd(a), a); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
