// Command keygen prints fresh API keys in the key:ROLE format the server's
// API_KEYS variable expects.
package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func main() {
	roles := flag.String("roles", "ADMIN,BOOKS,AUTHORS,MEMBERS,BORROWED_BOOKS", "comma-separated roles to generate keys for")
	flag.Parse()

	var pairs []string
	for _, role := range strings.Split(*roles, ",") {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		pairs = append(pairs, uuid.NewString()+":"+role)
	}
	fmt.Println("API_KEYS=" + strings.Join(pairs, ","))
}
