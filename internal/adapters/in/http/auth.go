package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ErrAuth marks a rejected room join or resync: missing, malformed or expired
// token, or a token whose branch capability does not cover the requested
// branch.
var ErrAuth = errors.New("authorization failed")

// TokenVerifier checks branch capability tokens. The token's branch_id claim
// is the capability: clients never get to pick a branch themselves.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier over the shared signing secret.
func NewTokenVerifier(secret string) TokenVerifier {
	return TokenVerifier{secret: []byte(secret)}
}

// BranchFromToken validates the token and returns the branch it grants
// access to.
func (v TokenVerifier) BranchFromToken(tokenString string) (kernel.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return kernel.UUID{}, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return kernel.UUID{}, fmt.Errorf("%w: unexpected claims shape", ErrAuth)
	}

	branchClaim, ok := claims["branch_id"].(string)
	if !ok {
		return kernel.UUID{}, fmt.Errorf("%w: branch_id claim missing", ErrAuth)
	}

	branchID, err := kernel.UUIDFromString(branchClaim)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	return branchID, nil
}

// IssueBranchToken signs a capability token for one branch. Used by the
// operator tooling that provisions admin consoles and courier devices.
func IssueBranchToken(secret string, branchID kernel.UUID, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"branch_id": branchID.String(),
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// tokenFromRequest pulls the bearer token from the Authorization header, or
// from the token query parameter as a fallback for EventSource clients that
// cannot set headers.
func tokenFromRequest(ctx echo.Context) (string, error) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), nil
	}

	if token := ctx.QueryParam("token"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("%w: no token supplied", ErrAuth)
}

// authorizeBranch verifies the request token and checks that its capability
// covers the branch in the path.
func (s *Server) authorizeBranch(ctx echo.Context, branchID kernel.UUID) error {
	tokenString, err := tokenFromRequest(ctx)
	if err != nil {
		return err
	}

	granted, err := s.verifier.BranchFromToken(tokenString)
	if err != nil {
		return err
	}

	if !granted.IsEqual(branchID) {
		return fmt.Errorf("%w: token does not cover branch %s", ErrAuth, branchID)
	}

	return nil
}
