package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// Context keys set by authenticate.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// createAccount must be called with s.mu held.
func (s *Server) createAccount(name, email, password string, role domain.Role) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &account{
		UserRecord: domain.UserRecord{
			ID:        s.store.id(),
			Name:      name,
			Email:     strings.ToLower(email),
			Role:      role,
			CreatedAt: s.store.now(),
		},
		hash: hash,
	}
	s.store.accounts[a.ID] = a
	return a, nil
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		return fail(http.StatusBadRequest, "All fields are required")
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	if !req.Role.Valid() {
		return fail(http.StatusBadRequest, "Invalid role")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.store.accountByEmail(req.Email) != nil {
		return fail(http.StatusBadRequest, "User already exists")
	}
	a, err := s.createAccount(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	s.log.Info().Int64("user_id", a.ID).Str("role", string(a.Role)).Msg("user registered")
	return c.JSON(http.StatusCreated, map[string]any{"message": "User registered successfully", "user": publicUser(a)})
}

// login answers 400 on bad credentials: a 401 is reserved for token failures.
func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}

	s.store.mu.Lock()
	a := s.store.accountByEmail(req.Email)
	var gen int
	if a != nil {
		gen = a.generation
	}
	s.store.mu.Unlock()

	if a == nil || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		return fail(http.StatusBadRequest, "Invalid credentials")
	}
	token, err := s.issueToken(a, gen)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Token: token, User: publicUser(a)})
}

func (s *Server) issueToken(a *account, generation int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(a.ID, 10),
		"role": string(a.Role),
		"gen":  generation,
		"exp":  s.store.now().Add(s.cfg.TokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

// authenticate validates the bearer token and injects the user id and role.
// Tokens of revoked generations are refused like forged ones.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return errNoToken
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return errUnauthorized
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithTimeFunc(s.store.now))
		if err != nil || !tkn.Valid {
			return errUnauthorized
		}

		sub, _ := claims.GetSubject()
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return errUnauthorized
		}
		gen, _ := claims["gen"].(float64)

		s.store.mu.Lock()
		a, ok := s.store.accounts[userID]
		valid := ok && a.generation == int(gen)
		var role domain.Role
		if ok {
			role = a.Role
		}
		s.store.mu.Unlock()
		if !valid {
			return errUnauthorized
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		return next(c)
	}
}

// adminOnly must run after authenticate.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get(ctxRole).(domain.Role); role != domain.RoleAdmin {
			return errAdminOnly
		}
		return next(c)
	}
}

func userID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserID).(int64)
	return id
}

// RevokeTokens invalidates every token issued so far for email.
func (s *Server) RevokeTokens(email string) bool {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	a := s.store.accountByEmail(email)
	if a == nil {
		return false
	}
	a.generation++
	return true
}

func publicUser(a *account) *domain.User {
	return &domain.User{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// tokenTTL falls back to a day.
func tokenTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
