package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/beachpoint/portal/models"
)

// Principal — личность действующего игрока, извлечённая из bearer-токена.
// Токен выпускает внешний коллаборатор аутентификации; портал его только
// читает и передаёт бекенду как есть.
type Principal struct {
	UserID int
	Name   string
	Email  string
	CPF    string
	Phone  string
	Gender models.CategoryGender

	// Сырой токен для передачи в backend.Client.
	Token string
}

type contextKey string

const principalContextKey contextKey = "principal"

var ErrNoPrincipal = errors.New("no authenticated principal in context")

// Authenticate проверяет подпись bearer-токена и кладёт Principal в контекст.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := principalFromClaims(claims, raw)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext достаёт Principal, положенный Authenticate.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	return principal, nil
}

func principalFromClaims(claims jwt.MapClaims, raw string) (Principal, error) {
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return Principal{}, errors.New("token is missing a valid user_id claim")
	}

	p := Principal{
		UserID: int(userID),
		Name:   stringClaim(claims, "name"),
		Email:  stringClaim(claims, "email"),
		CPF:    stringClaim(claims, "cpf"),
		Phone:  stringClaim(claims, "phone"),
		Gender: models.CategoryGender(stringClaim(claims, "gender")),
		Token:  raw,
	}
	return p, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
