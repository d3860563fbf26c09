package refpkg

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var transactionNumberPattern = regexp.MustCompile(`^TXN-\d{8}-[0-9a-f]{8}$`)

func TestTransactionNumberFormat(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2023, time.May, 14, 23, 59, 59, 0, time.UTC)

	got := TransactionNumber(createdAt)

	require.Regexp(t, transactionNumberPattern, got)
	require.Equal(t, "TXN-20230514-", got[:13])
}

func TestTransactionNumberUsesUTCDate(t *testing.T) {
	t.Parallel()

	// 23:30 in UTC+5 is still the previous day in UTC.
	loc := time.FixedZone("UTC+5", 5*60*60)
	createdAt := time.Date(2023, time.May, 15, 1, 30, 0, 0, loc)

	got := TransactionNumber(createdAt)

	require.Equal(t, "TXN-20230514-", got[:13])
}

func TestTransactionNumberCollisions(t *testing.T) {
	t.Parallel()

	const n = 10_000

	createdAt := time.Now()
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		num := TransactionNumber(createdAt)

		if _, ok := seen[num]; ok {
			t.Fatalf("TransactionNumber produced a duplicate %q after %d generations", num, i)
		}

		seen[num] = struct{}{}
	}
}

func TestAccountNumberFormat(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2023, time.May, 14, 12, 0, 0, 0, time.UTC)

	got := AccountNumber(createdAt)

	require.Regexp(t, `^20230514[0-9a-f]{8}$`, got)
}
