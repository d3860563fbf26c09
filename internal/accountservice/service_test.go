package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/currencypkg"
	"github.com/go-petr/micro-bank/pkg/randompkg"
)

func testAccount() domain.Account {
	return domain.Account{
		ID:            uuid.New(),
		AccountNumber: "202401015f3a9b21",
		Owner:         randompkg.Owner(),
		Type:          domain.AccountChecking,
		Balance:       "1000",
		Currency:      currencypkg.USD,
		IsActive:      true,
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := testAccount()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Eq(account.Owner), gomock.Eq(account.Type), gomock.Eq(account.Currency)).
		Times(1).
		DoAndReturn(func(_ context.Context, accountNumber, _ string, _ domain.AccountType, _ string) (domain.Account, error) {
			require.Regexp(t, `^\d{8}[0-9a-f]{8}$`, accountNumber)
			return account, nil
		})

	service := New(repo)

	created, err := service.Create(context.Background(), account.Owner, account.Type, account.Currency)
	require.NoError(t, err)
	require.Equal(t, account, created)
}

func TestMutateBalance(t *testing.T) {
	account := testAccount()

	testCases := []struct {
		name          string
		amount        string
		withdraw      bool
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, res domain.Account, err error)
	}{
		{
			name:   "DepositOK",
			amount: "100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().AddBalance(gomock.Any(), gomock.Eq("100"), gomock.Eq(account.ID)).Times(1).
					Return(account, nil)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, account, res)
			},
		},
		{
			name:     "WithdrawOK",
			amount:   "100",
			withdraw: true,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DebitBalance(gomock.Any(), gomock.Eq("100"), gomock.Eq(account.ID)).Times(1).
					Return(account, nil)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, account, res)
			},
		},
		{
			name:   "UnparsableAmount",
			amount: "!@#$",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNonPositiveAmount)
			},
		},
		{
			name:     "ZeroAmount",
			amount:   "0",
			withdraw: true,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DebitBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNonPositiveAmount)
			},
		},
		{
			name:   "NegativeAmount",
			amount: "-10",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNonPositiveAmount)
			},
		},
		{
			name:     "InsufficientBalance",
			amount:   "5000",
			withdraw: true,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().DebitBalance(gomock.Any(), gomock.Eq("5000"), gomock.Eq(account.ID)).Times(1).
					Return(domain.Account{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo)

			var (
				res domain.Account
				err error
			)

			if tc.withdraw {
				res, err = service.Withdraw(context.Background(), account.ID, tc.amount)
			} else {
				res, err = service.Deposit(context.Background(), account.ID, tc.amount)
			}

			tc.checkResponse(t, res, err)
		})
	}
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := testAccount()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().
		List(gomock.Any(), gomock.Eq(account.Owner), gomock.Eq(int32(10)), gomock.Eq(int32(20))).
		Times(1).
		Return([]domain.Account{account}, nil)

	service := New(repo)

	accounts, err := service.List(context.Background(), account.Owner, 10, 3)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
}
