// Package apitest is an in-process stand-in for the remote debt-tracking API.
// It implements the full HTTP surface the client consumes, with in-memory
// state, so service and transport tests run against real request/response
// round trips. cmd/fakeapi serves it standalone for local development.
package apitest

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/and161185/debtdesk/internal/model"
)

// SessionCookie is the name of the session credential cookie.
const SessionCookie = "debtdesk_session"

const sessionTTL = 30 * time.Minute

var validate = validator.New()

type account struct {
	user model.User
	hash []byte
	salt []byte
}

// Server holds the fake API state. Safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	log       *zap.Logger
	signKey   []byte
	users     map[int64]*account
	customers map[int64]model.Customer
	payments  map[int64]model.Payment
	nextID    map[string]int64
	pageSize  int

	// counts requests per method+path pattern, for asserting cache behavior
	hits map[string]int
}

// New creates an empty fake API server.
func New(log *zap.Logger) *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &Server{
		log:       log,
		signKey:   key,
		users:     map[int64]*account{},
		customers: map[int64]model.Customer{},
		payments:  map[int64]model.Payment{},
		nextID:    map[string]int64{},
		pageSize:  10,
		hits:      map[string]int{},
	}
}

// Router mounts every endpoint of the API surface under /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, s.logging, s.counting)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", s.handleRegister)
		r.Post("/users/login", s.handleLogin)
		r.Post("/users/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/users/me", s.handleMe)

			r.Get("/customers", s.handleListCustomers)
			r.Post("/customers", s.handleCreateCustomer)
			r.Get("/customers/{id}", s.handleGetCustomer)
			r.Patch("/customers/{id}", s.handleUpdateCustomer)
			r.Delete("/customers/{id}", s.handleDeleteCustomer)

			r.Get("/payments/payments", s.handleListPayments)
			r.Get("/payments/payments/{id}", s.handleGetPayment)
			r.Patch("/payments/payments/{id}", s.handleUpdatePayment)
			r.Delete("/payments/payments/{id}", s.handleDeletePayment)
			r.Get("/payments/customers/{customerId}/payments", s.handleCustomerPayments)
			r.Post("/payments/customers/{customerId}/payments", s.handleCreatePayment)

			r.Get("/statistics/monthly", s.handleMonthlyStats)
		})
	})
	return r
}

// Hits reports how many requests matched the given "METHOD /path" pattern.
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

func (s *Server) seq(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// ---- password hashing (argon2id) ----

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 2, 32)
}

func verifyPassword(password string, salt, hash []byte) bool {
	got := hashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, hash) == 1
}

// ---- session cookie ----

func (s *Server) issueSession(w http.ResponseWriter, userID int64) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := tok.SignedString(s.signKey)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(sessionTTL),
	})
}

func (s *Server) sessionUser(r *http.Request) (int64, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return 0, fmt.Errorf("no session cookie")
	}
	tok, err := jwt.ParseWithClaims(c.Value, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return 0, fmt.Errorf("invalid session")
	}
	claims := tok.Claims.(*jwt.RegisteredClaims)
	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return 0, err
	}
	return id, nil
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decode parses the JSON body and runs struct validation.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// parseDate accepts both plain dates and RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ---- auth handlers ----

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.Credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	for _, a := range s.users {
		if a.user.Username == in.Username {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
	}
	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	now := time.Now().UTC()
	u := model.User{
		ID:        s.seq("user"),
		Username:  in.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = &account{user: u, hash: hashPassword(in.Password, salt), salt: salt}
	s.mu.Unlock()

	s.issueSession(w, u.ID)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.Credentials
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	var acc *account
	for _, a := range s.users {
		if a.user.Username == in.Username {
			acc = a
			break
		}
	}
	s.mu.Unlock()
	if acc == nil || !verifyPassword(in.Password, acc.salt, acc.hash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.issueSession(w, acc.user.ID)
	writeJSON(w, http.StatusOK, model.AuthResponse{Message: "logged in"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    SessionCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})
	writeJSON(w, http.StatusOK, model.AuthResponse{Message: "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)
	s.mu.Lock()
	acc, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown session user")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

// ---- seeding (tests and cmd/fakeapi) ----

// AddUser registers an account directly and returns it.
func (s *Server) AddUser(username, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	salt := make([]byte, 16)
	_, _ = rand.Read(salt)
	now := time.Now().UTC()
	u := model.User{ID: s.seq("user"), Username: username, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = &account{user: u, hash: hashPassword(password, salt), salt: salt}
	return u
}

// AddCustomer stores a customer directly, assigning its identity.
func (s *Server) AddCustomer(c model.Customer) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.seq("customer")
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.PaymentStatus == "" {
		c.PaymentStatus = model.StatusUnpaid
	}
	s.customers[c.ID] = c
	return c
}

// AddPayment stores a payment directly, assigning its identity.
func (s *Server) AddPayment(p model.Payment) model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.seq("payment")
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.payments[p.ID] = p
	return p
}
