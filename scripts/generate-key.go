// Package main is a development utility that generates a random secret for
// signing the preferences cookie. It prints the value along with the
// environment variable and config.yaml snippets that use it.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

func main() {
	size := flag.Int("bytes", 32, "number of random bytes in the secret")
	flag.Parse()

	if *size < 32 {
		log.Fatalf("refusing to generate a secret shorter than 32 bytes (got %d)", *size)
	}

	randomBytes := make([]byte, *size)
	if _, err := rand.Read(randomBytes); err != nil {
		log.Fatal(err)
	}

	secret := base64.RawURLEncoding.EncodeToString(randomBytes)

	fmt.Println("==========================================================")
	fmt.Println("Preferences Secret Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nSecret: %s\n", secret)
	fmt.Println("\n==========================================================")
	fmt.Println("Environment:")
	fmt.Println("==========================================================")
	fmt.Printf("\nexport HUBWEB_PREFS_SECRET=%s\n", secret)
	fmt.Println("\n==========================================================")
	fmt.Println("config.yaml:")
	fmt.Println("==========================================================")
	fmt.Printf(`
session:
  prefs_secret: "%s"
`, secret)
	fmt.Println("\n==========================================================")
}
