package domain

import (
	"crypto/subtle"
	"time"
)

// SessionTTL is the fixed lifetime of an issued session token.
const SessionTTL = time.Hour

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

type Credential struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// CredentialTable is the static set of accepted login pairs.
type CredentialTable []Credential

func NewCredentialTable(creds ...Credential) CredentialTable {
	table := make(CredentialTable, len(creds))
	copy(table, creds)
	return table
}

// Match reports whether email and password equal one configured entry.
// Every entry is compared in full so timing does not reveal which field failed.
func (t CredentialTable) Match(email, password string) (Credential, bool) {
	var (
		found Credential
		ok    bool
	)
	for _, c := range t {
		emailEq := subtle.ConstantTimeCompare([]byte(c.Email), []byte(email))
		passEq := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password))
		if emailEq&passEq == 1 && !ok {
			found, ok = c, true
		}
	}
	return found, ok
}
