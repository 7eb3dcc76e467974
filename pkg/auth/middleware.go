package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts the bearer token from the Authorization
// header, falling back to the "token" query parameter. The fallback is
// deliberate: OAuth redirect flows land via browser navigation and cannot
// set headers.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && scheme == "Bearer" && token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// RequireAccess returns middleware that verifies the access token, loads
// the account it names and stores the sanitized view in the request
// context. Every failure is an opaque 401.
func RequireAccess(codec *TokenCodec, store AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := codec.VerifyAccess(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// The token proves possession; the store lookup confirms the
			// account still exists.
			account, err := store.FindByID(r.Context(), userID)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithAccount(r.Context(), account.View())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
