// Package refpkg generates human-facing reference and account numbers.
//
// The numbers embed the UTC creation date plus a random hex suffix. They are
// unique with overwhelming probability but not guaranteed unique by
// construction; durable uniqueness is enforced by the stores.
package refpkg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const suffixBytes = 4 // 8 hex chars

func hexSuffix() string {
	b := make([]byte, suffixBytes)

	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}

// TransactionNumber returns a transaction reference number of the form
// TXN-YYYYMMDD-xxxxxxxx for the given creation time.
func TransactionNumber(createdAt time.Time) string {
	return fmt.Sprintf("TXN-%s-%s", createdAt.UTC().Format("20060102"), hexSuffix())
}

// AccountNumber returns an account number of the form YYYYMMDDxxxxxxxx
// for the given creation time.
func AccountNumber(createdAt time.Time) string {
	return createdAt.UTC().Format("20060102") + hexSuffix()
}
