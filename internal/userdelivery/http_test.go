package userdelivery

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/micro-bank/internal/domain"
	"github.com/go-petr/micro-bank/internal/userservice"
	"github.com/go-petr/micro-bank/pkg/errorspkg"
	"github.com/go-petr/micro-bank/pkg/passpkg"
	"github.com/go-petr/micro-bank/pkg/randompkg"
	"github.com/go-petr/micro-bank/pkg/tokenpkg"
)

const testAccessTokenDuration = time.Minute

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func randomUser(t *testing.T) (domain.User, string) {
	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	require.NoError(t, err)

	user := domain.User{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.Owner(),
		Email:          randompkg.Email(),
	}

	return user, password
}

func newTestServer(t *testing.T, userService Service) *gin.Engine {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	handler := NewHandler(userService, tokenMaker, testAccessTokenDuration)

	server := gin.New()
	server.POST("/api/auth/register", handler.Create)
	server.POST("/api/auth/login", handler.Login)

	return server
}

func TestCreateAPI(t *testing.T) {
	testUser, password := randomUser(t)

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(userService *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  password,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(),
						gomock.Eq(testUser.Username),
						gomock.Eq(password),
						gomock.Eq(testUser.FullName),
						gomock.Eq(testUser.Email)).
					Times(1).
					Return(userservice.NewUserWithoutPassword(testUser), nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)

				body, err := io.ReadAll(recorder.Body)
				require.NoError(t, err)

				var got response
				require.NoError(t, json.Unmarshal(body, &got))

				require.NotEmpty(t, got.AccessToken)
				require.Equal(t, testUser.Username, got.Data.User.Username)
				require.Equal(t, testUser.FullName, got.Data.User.FullName)
				require.Equal(t, testUser.Email, got.Data.User.Email)
			},
		},
		{
			name: "InvalidUsername",
			requestBody: gin.H{
				"username":  "user&%",
				"password":  password,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "ShortPassword",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  "xyz",
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InvalidEmail",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  password,
				"full_name": testUser.FullName,
				"email":     "user%email.com",
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UniqueViolationUsername",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  password,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUsernameAlreadyExists)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name: "CreateInternalError",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  password,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.UserWithoutPassword{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userService := NewMockService(ctrl)
			tc.buildStubs(userService)

			server := newTestServer(t, userService)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			tc.checkResponse(t, recorder)
		})
	}
}

func TestLoginAPI(t *testing.T) {
	testUser, password := randomUser(t)

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(userService *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": password,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(password)).
					Times(1).
					Return(userservice.NewUserWithoutPassword(testUser), nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				body, err := io.ReadAll(recorder.Body)
				require.NoError(t, err)

				var got response
				require.NoError(t, json.Unmarshal(body, &got))

				require.NotEmpty(t, got.AccessToken)
				require.Equal(t, testUser.Username, got.Data.User.Username)
			},
		},
		{
			name: "InvalidUsernameRequest",
			requestBody: gin.H{
				"username": "invalid-%user#1",
				"password": password,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UserNotFound",
			requestBody: gin.H{
				"username": "NotFound",
				"password": password,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUserNotFound)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "IncorrectPassword",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": "incorrect",
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq("incorrect")).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrWrongPassword)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "CheckPasswordInternalError",
			requestBody: gin.H{
				"username": testUser.Username,
				"password": password,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(password)).
					Times(1).
					Return(domain.UserWithoutPassword{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userService := NewMockService(ctrl)
			tc.buildStubs(userService)

			server := newTestServer(t, userService)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			tc.checkResponse(t, recorder)
		})
	}
}
