package notificationservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/go-petr/micro-bank/pkg/randompkg"
)

func testNotification(status domain.NotificationStatus) domain.Notification {
	return domain.Notification{
		ID:        uuid.New(),
		Recipient: randompkg.Email(),
		Type:      domain.NotificationTransactionCompleted,
		Subject:   "Transaction completed",
		Message:   "Your transaction has been completed.",
		Status:    status,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	arg := domain.CreateNotificationParams{
		Recipient: randompkg.Email(),
		Type:      domain.NotificationTransactionCompleted,
		Subject:   "Transaction completed",
		Message:   "Your transaction has been completed.",
	}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo, sender *MockSender)
		checkResponse func(t *testing.T, res domain.Notification, err error)
	}{
		{
			name: "Sent",
			buildStubs: func(repo *MockRepo, sender *MockSender) {
				pending := testNotification(domain.NotificationPending)
				sent := pending
				sent.Status = domain.NotificationSent

				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
					Return(pending, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Eq(pending)).Times(1).
					Return(nil)
				repo.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(pending.ID), gomock.Eq(domain.NotificationSent), gomock.Not(gomock.Nil())).
					Times(1).
					Return(sent, nil)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.NotificationSent, res.Status)
			},
		},
		{
			name: "DeliveryFails",
			buildStubs: func(repo *MockRepo, sender *MockSender) {
				pending := testNotification(domain.NotificationPending)
				failed := pending
				failed.Status = domain.NotificationFailed

				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
					Return(pending, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Eq(pending)).Times(1).
					Return(errors.New("smtp unavailable"))
				repo.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(pending.ID), gomock.Eq(domain.NotificationFailed), gomock.Nil()).
					Times(1).
					Return(failed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.NotificationFailed, res.Status)
			},
		},
		{
			name: "PersistFails",
			buildStubs: func(repo *MockRepo, sender *MockSender) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Notification{}, errorspkg.ErrInternal)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
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
			sender := NewMockSender(ctrl)
			tc.buildStubs(repo, sender)

			service := New(repo, sender)

			res, err := service.Create(context.Background(), arg)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestResend(t *testing.T) {
	testCases := []struct {
		name          string
		notification  domain.Notification
		buildStubs    func(repo *MockRepo, sender *MockSender, n domain.Notification)
		checkResponse func(t *testing.T, res domain.Notification, err error)
	}{
		{
			name:         "FailedResent",
			notification: testNotification(domain.NotificationFailed),
			buildStubs: func(repo *MockRepo, sender *MockSender, n domain.Notification) {
				sent := n
				sent.Status = domain.NotificationSent

				repo.EXPECT().Get(gomock.Any(), gomock.Eq(n.ID)).Times(1).
					Return(n, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Eq(n)).Times(1).
					Return(nil)
				repo.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(n.ID), gomock.Eq(domain.NotificationSent), gomock.Not(gomock.Nil())).
					Times(1).
					Return(sent, nil)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.NotificationSent, res.Status)
			},
		},
		{
			name:         "SentRefused",
			notification: testNotification(domain.NotificationSent),
			buildStubs: func(repo *MockRepo, sender *MockSender, n domain.Notification) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(n.ID)).Times(1).
					Return(n, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNotificationNotFailed)
			},
		},
		{
			name:         "PendingRefused",
			notification: testNotification(domain.NotificationPending),
			buildStubs: func(repo *MockRepo, sender *MockSender, n domain.Notification) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(n.ID)).Times(1).
					Return(n, nil)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNotificationNotFailed)
			},
		},
		{
			name:         "NotFound",
			notification: testNotification(domain.NotificationFailed),
			buildStubs: func(repo *MockRepo, sender *MockSender, n domain.Notification) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(n.ID)).Times(1).
					Return(domain.Notification{}, domain.ErrNotificationNotFound)
				sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Notification, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNotificationNotFound)
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
			sender := NewMockSender(ctrl)
			tc.buildStubs(repo, sender, tc.notification)

			service := New(repo, sender)

			res, err := service.Resend(context.Background(), tc.notification.ID)
			tc.checkResponse(t, res, err)
		})
	}
}
