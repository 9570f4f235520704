// pkg/interaction/crypto.go

package interaction

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt-hashes a plaintext password for storage under
// auth.admin_password_hash. The plaintext never leaves this function.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", cerr.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// PromptNewPassword asks for a password twice and returns its bcrypt hash.
func PromptNewPassword(label string) (string, error) {
	for {
		first, err := PromptSecret(label)
		if err != nil {
			return "", err
		}
		if first == "" {
			return "", nil
		}
		second, err := PromptSecret(label + " (again)")
		if err != nil {
			return "", err
		}
		if first == second {
			return HashPassword(first)
		}
		fmt.Println("Passwords do not match, try again.")
	}
}
