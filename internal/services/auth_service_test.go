package services

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceTestSuite struct {
	suite.Suite
	userRepo *MockUserRepository
	roleRepo *MockRoleRepository
	service  *authService
	context  context.Context
	customer *models.Role
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.userRepo = new(MockUserRepository)
	suite.roleRepo = new(MockRoleRepository)
	suite.service = NewAuthService(suite.userRepo, suite.roleRepo, "test-secret", 3600).(*authService)
	suite.context = context.Background()
	suite.customer = &models.Role{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Name: models.RoleCustomer}
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.roleRepo.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestRegister_HashesPasswordAndAssignsCustomerRole() {
	suite.roleRepo.On("GetByName", suite.context, models.RoleCustomer).Return(suite.customer, nil)
	suite.userRepo.On("Create", suite.context, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := suite.service.Register(suite.context, "Ada", " Ada@Example.com ", "correct horse")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "ada@example.com", user.Email)
	assert.Equal(suite.T(), suite.customer.ID, user.RoleID)
	assert.False(suite.T(), user.IsAdmin())
	assert.NotEqual(suite.T(), "correct horse", user.PasswordHash)
	assert.NoError(suite.T(), bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func (suite *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	suite.roleRepo.On("GetByName", suite.context, models.RoleCustomer).Return(suite.customer, nil)
	suite.userRepo.On("Create", suite.context, mock.AnythingOfType("*models.User")).Return(repositories.ErrConflict)

	_, err := suite.service.Register(suite.context, "Ada", "ada@example.com", "correct horse")
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestRegister_Validation() {
	tests := []struct {
		name, userName, email, password, field string
	}{
		{"missing name", "", "ada@example.com", "correct horse", "name"},
		{"bad email", "Ada", "not-an-email", "correct horse", "email"},
		{"short password", "Ada", "ada@example.com", "short", "password"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.Register(suite.context, tt.userName, tt.email, tt.password)
			var validationErr *ValidationError
			require.ErrorAs(suite.T(), err, &validationErr)
			assert.Equal(suite.T(), tt.field, validationErr.Field)
		})
	}
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesVerifiableToken() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	stored := &models.User{ID: uuid.New(), Role: models.RoleAdmin, Email: "root@example.com", PasswordHash: string(hash)}
	suite.userRepo.On("GetByEmail", suite.context, "root@example.com").Return(stored, nil)

	user, token, err := suite.service.Login(suite.context, "ROOT@example.com", "correct horse")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored.ID, user.ID)
	assert.Equal(suite.T(), "Bearer", token.TokenType)
	assert.Equal(suite.T(), 3600, token.ExpiresIn)

	claims, err := suite.service.ValidateToken(token.AccessToken)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored.ID.String(), claims.Subject)
	assert.Equal(suite.T(), models.RoleAdmin, claims.Role)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	suite.userRepo.On("GetByEmail", suite.context, "ada@example.com").
		Return(&models.User{ID: uuid.New(), PasswordHash: string(hash)}, nil)

	_, _, err = suite.service.Login(suite.context, "ada@example.com", "battery staple")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	suite.userRepo.On("GetByEmail", suite.context, "nobody@example.com").Return(nil, repositories.ErrNotFound)

	_, _, err := suite.service.Login(suite.context, "nobody@example.com", "whatever1")
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestValidateToken_Expired() {
	user := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	suite.service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := suite.service.GenerateToken(user)
	require.NoError(suite.T(), err)

	suite.service.now = time.Now
	_, err = suite.service.ValidateToken(token.AccessToken)
	assert.ErrorIs(suite.T(), err, jwt.ErrTokenExpired)
}

func (suite *AuthServiceTestSuite) TestValidateToken_WrongSecret() {
	other := NewAuthService(suite.userRepo, suite.roleRepo, "other-secret", 3600)
	token, err := other.GenerateToken(&models.User{ID: uuid.New(), Role: models.RoleCustomer})
	require.NoError(suite.T(), err)

	_, err = suite.service.ValidateToken(token.AccessToken)
	assert.ErrorIs(suite.T(), err, jwt.ErrTokenSignatureInvalid)
}
