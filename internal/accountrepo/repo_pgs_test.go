package accountrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/internal/userrepo"
	"github.com/go-petr/micro-bank/pkg/configpkg"
	"github.com/go-petr/micro-bank/pkg/passpkg"
	"github.com/go-petr/micro-bank/pkg/randompkg"
	"github.com/go-petr/micro-bank/pkg/refpkg"

	_ "github.com/lib/pq"
)

var (
	testRepo     *RepoPGS
	testUserRepo *userrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.AccountDBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	if err := testDB.Ping(); err != nil {
		log.Println("account db is not reachable, skipping repository tests:", err)
		os.Exit(0)
	}

	testRepo = NewRepoPGS(testDB)
	testUserRepo = userrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createRandomUser(t *testing.T) domain.User {
	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	require.NoError(t, err)

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.Owner(),
		Email:          randompkg.Email(),
	}

	testUser, err := testUserRepo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, testUser)

	return testUser
}

func createRandomAccount(t *testing.T, testUser domain.User) domain.Account {
	accountNumber := refpkg.AccountNumber(time.Now())
	currency := randompkg.Currency()

	account, err := testRepo.Create(context.Background(),
		accountNumber, testUser.Username, domain.AccountChecking, currency)
	require.NoError(t, err)
	require.NotEmpty(t, account)

	require.Equal(t, accountNumber, account.AccountNumber)
	require.Equal(t, testUser.Username, account.Owner)
	require.Equal(t, domain.AccountChecking, account.Type)
	require.Equal(t, "0", account.Balance)
	require.Equal(t, currency, account.Currency)
	require.True(t, account.IsActive)
	require.NotZero(t, account.ID)
	require.NotZero(t, account.CreatedAt)

	return account
}

func TestCreate(t *testing.T) {
	testUser := createRandomUser(t)
	createRandomAccount(t, testUser)
}

func TestCreateOwnerNotFound(t *testing.T) {
	account, err := testRepo.Create(context.Background(),
		refpkg.AccountNumber(time.Now()), "NotFound", domain.AccountChecking, randompkg.Currency())

	require.EqualError(t, err, domain.ErrOwnerNotFound.Error())
	require.Empty(t, account)
}

func TestGet(t *testing.T) {
	testUser := createRandomUser(t)
	testAccount := createRandomAccount(t, testUser)

	account2, err := testRepo.Get(context.Background(), testAccount.ID)
	require.NoError(t, err)
	require.NotEmpty(t, account2)

	require.Equal(t, testAccount.ID, account2.ID)
	require.Equal(t, testAccount.AccountNumber, account2.AccountNumber)
	require.Equal(t, testAccount.Owner, account2.Owner)
	require.Equal(t, testAccount.Balance, account2.Balance)
	require.Equal(t, testAccount.Currency, account2.Currency)
	require.WithinDuration(t, testAccount.CreatedAt, account2.CreatedAt, time.Second)
}

func TestGetByNumber(t *testing.T) {
	testUser := createRandomUser(t)
	testAccount := createRandomAccount(t, testUser)

	account2, err := testRepo.GetByNumber(context.Background(), testAccount.AccountNumber)
	require.NoError(t, err)
	require.Equal(t, testAccount.ID, account2.ID)
}

func TestList(t *testing.T) {
	var lastAccount domain.Account

	testUser := createRandomUser(t)
	for i := 0; i < 5; i++ {
		lastAccount = createRandomAccount(t, testUser)
	}

	accounts, err := testRepo.List(context.Background(), lastAccount.Owner, 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, accounts)

	for _, account := range accounts {
		require.NotEmpty(t, account)
		require.Equal(t, lastAccount.Owner, account.Owner)
	}
}

func TestAddBalance(t *testing.T) {
	testUser := createRandomUser(t)
	testAccount := createRandomAccount(t, testUser)
	testAmount := randompkg.MoneyAmountBetween(100, 1_000)

	before, err := decimal.NewFromString(testAccount.Balance)
	require.NoError(t, err)
	delta, err := decimal.NewFromString(testAmount)
	require.NoError(t, err)

	account2, err := testRepo.AddBalance(context.Background(), testAmount, testAccount.ID)
	require.NoError(t, err)
	require.NotEmpty(t, account2)

	after, err := decimal.NewFromString(account2.Balance)
	require.NoError(t, err)

	require.Equal(t, testAccount.ID, account2.ID)
	require.True(t, before.Add(delta).Equal(after))
}

func TestDebitBalance(t *testing.T) {
	testUser := createRandomUser(t)
	testAccount := createRandomAccount(t, testUser)

	_, err := testRepo.AddBalance(context.Background(), "500", testAccount.ID)
	require.NoError(t, err)

	account2, err := testRepo.DebitBalance(context.Background(), "200", testAccount.ID)
	require.NoError(t, err)

	after, err := decimal.NewFromString(account2.Balance)
	require.NoError(t, err)
	require.True(t, after.Equal(decimal.NewFromInt(300)))
}

func TestDebitBalanceInsufficient(t *testing.T) {
	testUser := createRandomUser(t)
	testAccount := createRandomAccount(t, testUser)

	account2, err := testRepo.DebitBalance(context.Background(), "100", testAccount.ID)
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
	require.Empty(t, account2)
}
