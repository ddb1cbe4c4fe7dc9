package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hugh/hoteldesk/internal/auth"
	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/internal/records"
	"github.com/hugh/hoteldesk/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	TestAdminEmail = "admin@hoteldesk.test"
	TestBaseURL    = "http://desk.test"
)

// SetupTestStore starts an in-process Redis and returns a store backed by it.
func SetupTestStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedisStore(client), mr
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 7*24*time.Hour)
}

// RecordingSender captures outgoing mail instead of delivering it.
type RecordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	Err  error
}

func (s *RecordingSender) Send(ctx context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *RecordingSender) Messages() []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Last returns the most recent message, failing the test if none was sent.
func (s *RecordingSender) Last(t *testing.T) notify.Message {
	t.Helper()
	msgs := s.Messages()
	if len(msgs) == 0 {
		t.Fatalf("no message was sent")
	}
	return msgs[len(msgs)-1]
}

// ApprovalToken extracts the token query parameter from an approval email.
func ApprovalToken(t *testing.T, msg notify.Message) string {
	t.Helper()

	for _, line := range strings.Split(msg.Body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "http") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			t.Fatalf("failed to parse approval link %q: %v", line, err)
		}
		if token := u.Query().Get("token"); token != "" {
			return token
		}
	}
	t.Fatalf("no approval link in message body: %s", msg.Body)
	return ""
}

// SeedUser writes an account directly into the users collection.
func SeedUser(t *testing.T, st store.Store, name, email, password string, approved bool) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := auth.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		Approved:     approved,
	}

	err = st.Update(context.Background(), func(tx store.Txn) error {
		var users []auth.User
		if _, err := store.TxnGetJSON(tx, store.KeyUsers, &users); err != nil {
			return err
		}
		users = append(users, user)
		return store.TxnSetJSON(tx, store.KeyUsers, users)
	}, store.KeyUsers)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return &user
}

// LoadUsers reads the users collection.
func LoadUsers(t *testing.T, st store.Store) []auth.User {
	t.Helper()
	var users []auth.User
	if _, err := store.GetJSON(context.Background(), st, store.KeyUsers, &users); err != nil {
		t.Fatalf("failed to load users: %v", err)
	}
	return users
}

// LoadPending reads the token to draft mapping.
func LoadPending(t *testing.T, st store.Store) map[string]auth.User {
	t.Helper()
	pending := map[string]auth.User{}
	if _, err := store.GetJSON(context.Background(), st, store.KeyPending, &pending); err != nil {
		t.Fatalf("failed to load pending drafts: %v", err)
	}
	return pending
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// RawRequest creates a request with a literal body.
func RawRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(rr.Body.Bytes()))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	Store         *store.RedisStore
	Redis         *miniredis.Miniredis
	JWTService    *auth.JWTService
	Mailer        *RecordingSender
	Logger        *slog.Logger
	AuthService   *auth.Service
	RecordService *records.Service
}

// NewTestContext wires services against a fresh miniredis-backed store.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	st, mr := SetupTestStore(t)
	jwtService := CreateTestJWTService()
	mailer := &RecordingSender{}
	logger := DiscardLogger()

	return &TestSetup{
		Store:         st,
		Redis:         mr,
		JWTService:    jwtService,
		Mailer:        mailer,
		Logger:        logger,
		AuthService:   auth.NewService(st, jwtService, mailer, TestAdminEmail, logger),
		RecordService: records.NewService(st, logger),
	}
}
