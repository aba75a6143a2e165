package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
)

var (
	jwtService = NewService("test-signing-key-test-signing-key", "ishemalink-test", 15*time.Minute, 24*time.Hour)
	userID     = id.UserID(uuid.New())
)

func Test_IssueAccess(t *testing.T) {
	now := time.Now()
	issued, err := jwtService.IssueAccess(userID, now)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.Validate(issued.Token, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.WithinDuration(t, now.Add(15*time.Minute), claims.ExpiresAtTime(), time.Second)

	parsed, err := claims.ParsedUserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func Test_RefreshCannotActAsAccess(t *testing.T) {
	issued, err := jwtService.IssueRefresh(userID, time.Now())
	require.NoError(t, err)

	_, err = jwtService.Validate(issued.Token, TypeAccess)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = jwtService.Validate(issued.Token, TypeRefresh)
	assert.NoError(t, err)
}

func Test_Validate_InvalidToken(t *testing.T) {
	_, err := jwtService.Validate("invalid-token-string", TypeAccess)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_ExpiredToken(t *testing.T) {
	issued, err := jwtService.IssueAccess(userID, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = jwtService.Validate(issued.Token, TypeAccess)
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "token has expired", de.Message)
}

func Test_Validate_ForeignKeyOrIssuer(t *testing.T) {
	other := NewService("another-key-another-key-another-key", "ishemalink-test", time.Minute, time.Hour)
	issued, err := other.IssueAccess(userID, time.Now())
	require.NoError(t, err)
	_, err = jwtService.Validate(issued.Token, TypeAccess)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	wrongIssuer := NewService("test-signing-key-test-signing-key", "someone-else", time.Minute, time.Hour)
	issued, err = wrongIssuer.IssueAccess(userID, time.Now())
	require.NoError(t, err)
	_, err = jwtService.Validate(issued.Token, TypeAccess)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
