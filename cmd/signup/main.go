// Package main is the entry point for the signup CLI.
//
// signup walks through the Poly registration wizard in the terminal: personal
// information, plan selection and confirmation. Registrations are simulated.
//
//	signup          run the wizard
//	signup plans    list the subscription plans
package main

import (
	"fmt"
	"os"

	"github.com/sohamda/fantasy-football/cmd/signup/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
