package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-payment-service/internal/delivery/http/dto/order/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey      = "user_id"
	roleKey        = "role"
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"

	RoleOperator = "operator"
)

var errInvalidToken = errors.New("invalid token")

// Claims is the access token payload issued by the identity service.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity resolves the caller. With a JWT secret configured it requires a
// Bearer token signed with it; otherwise it trusts the X-User-Id and
// X-User-Role headers set by the API gateway.
func Identity(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			claims Claims
			err    error
		)
		if jwtSecret != "" {
			claims, err = claimsFromBearer(c.GetHeader("Authorization"), jwtSecret)
		} else {
			claims.Role = c.GetHeader(userRoleHeader)
			claims.UserID, err = strconv.ParseInt(c.GetHeader(userIDHeader), 10, 64)
		}
		if err != nil || claims.UserID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Envelope{
				Error: &response.ErrorBody{Code: "UNAUTHORIZED", Message: "missing or invalid caller identity"},
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func claimsFromBearer(header, secret string) (Claims, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Claims{}, errInvalidToken
	}

	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errInvalidToken
	}
	return *claims, nil
}

// GetUserID returns the caller id set by Identity.
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// IsOperator reports whether the caller holds the operator role.
func IsOperator(c *gin.Context) bool {
	return c.GetString(roleKey) == RoleOperator
}
