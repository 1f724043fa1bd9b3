// admin-cli is a thin operator tool over the admin client: every
// subcommand resolves a cluster, issues exactly one admin RPC, and
// prints the result.
package main

func main() {
	Execute()
}
