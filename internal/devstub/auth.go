package devstub

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

// tokenTTL is deliberately short so proactive refresh is exercised during
// local development.
const tokenTTL = 15 * time.Minute

type stubClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *Server) mintToken(subject string, now time.Time) (string, error) {
	claims := stubClaims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parseToken verifies a stub-minted token. Expiry is not enforced here: the
// refresh endpoint must accept a token that just lapsed.
func (s *Server) parseToken(raw string) (*stubClaims, error) {
	claims := &stubClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin accepts any non-empty credentials; this is a dev stub, not an
// identity provider.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := s.mintToken(req.Email, time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}

	s.writeData(w, map[string]any{
		"token": token,
		"user": core.User{
			ID:    "1",
			Name:  req.Email,
			Email: req.Email,
			Role:  "admin",
		},
	})
}

// handleRefresh reissues a credential for the bearer of a valid (possibly
// just-expired) stub token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		s.writeError(w, http.StatusUnauthorized, "missing credential")
		return
	}
	claims, err := s.parseToken(raw)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credential")
		return
	}

	token, err := s.mintToken(claims.Subject, time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to mint token")
		return
	}
	s.writeData(w, map[string]string{"token": token})
}

// requireAuth guards the admin routes.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			s.writeError(w, http.StatusUnauthorized, "missing credential")
			return
		}
		claims, err := s.parseToken(raw)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid credential")
			return
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			s.writeError(w, http.StatusUnauthorized, "credential expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}
