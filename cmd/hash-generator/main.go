// Command hash-generator prints bcrypt hashes for seeding users directly in
// the database. Passwords are read one per line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/bankcards-api/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost (4..31)")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, auth.NewBcryptHasher(*cost)); err != nil {
		fmt.Fprintf(os.Stderr, "hash-generator: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, hasher auth.PasswordHasher) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		password := strings.TrimRight(scanner.Text(), "\r")
		if password == "" {
			continue
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if _, err := fmt.Fprintln(out, hash); err != nil {
			return err
		}
	}
	return scanner.Err()
}
