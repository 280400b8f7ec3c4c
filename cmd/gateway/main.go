// Command gateway is the Minecraft Java Edition reverse-proxy entrypoint:
// it loads routing configuration, wires the shared collaborators
// (resolver, policy chain, status cache, telemetry, MOTD builder), and
// runs the supervisor's accept loop until signalled to stop.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
