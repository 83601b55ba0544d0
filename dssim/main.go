// Command dssim runs distributed algorithm scenarios on a simulated network.
package main

import "github.com/maxmuv/dos/dssim/cmd"

func main() {
	cmd.Execute()
}
