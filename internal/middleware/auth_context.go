package middleware

import (
	"context"
	"net/http"
	"strings"

	"pilltrack/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Headers que solo se respetan sin verifier (modo dev).
const (
	DebugUserHeader  = "X-Debug-User-ID"
	DebugRolesHeader = "X-Debug-Roles"
)

// AuthContext:
// - Con verifier y Bearer token => Verify() (JWT HS256) y setea claims.
// - Sin verifier => modo dev: toma el usuario de X-Debug-User-ID.
// - Sin claims el request sigue; cada handler responde 401 si necesita usuario.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
					claims := auth.Claims{UserID: uid, Roles: splitRoles(r.Header.Get(DebugRolesHeader))}
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			// Verifier mode
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// token inválido o vencido: sigue como anónimo
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims devuelve ctx con claims (tests y jobs que actúan en nombre de un usuario).
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func splitRoles(h string) []string {
	var out []string
	for _, r := range strings.Split(h, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
