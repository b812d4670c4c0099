// Command liderplanctl runs administrative tasks against the LiderPlan
// database: creating the first ADMIN and preparing collections.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("liderplanctl: %v", err)
	}
}
