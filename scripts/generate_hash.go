//go:build ignore

// generate_hash.go prints the Argon2id hash of an admin password.
// Usage: go run scripts/generate_hash.go <password>
//
// Put the result in .env as ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"ecosignal.fr/rewards/internal/features/admin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/generate_hash.go <password>")
		os.Exit(1)
	}

	hash, err := admin.HashPassword(os.Args[1])
	if err != nil {
		fmt.Printf("Could not hash the password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Password hash (set it in .env as ADMIN_PASSWORD_HASH):")
	fmt.Println(hash)
}
