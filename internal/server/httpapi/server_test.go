package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/cryptox"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/logging"
	"github.com/secureledger/vault/internal/server/config"
	"github.com/secureledger/vault/internal/server/models"
	biometricsrepo "github.com/secureledger/vault/internal/server/repositories/biometrics"
	credentialsrepo "github.com/secureledger/vault/internal/server/repositories/credentials"
	resettokensrepo "github.com/secureledger/vault/internal/server/repositories/resettokens"
	"github.com/secureledger/vault/internal/server/services"
)

// In-memory fakes standing in for the storage backends, so the transport
// can be driven end to end with httptest.

type memCredentials struct {
	rows map[string]models.Credential
}

func (m *memCredentials) Upsert(ctx context.Context, cred *models.Credential) error {
	m.rows[cred.UserID] = *cred
	return nil
}

func (m *memCredentials) Get(ctx context.Context, userID string) (*models.Credential, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := row
	return &out, nil
}

type memTokens struct {
	rows map[string]*models.ResetToken
}

func (m *memTokens) Create(ctx context.Context, token *models.ResetToken) error {
	cp := *token
	m.rows[token.Token] = &cp
	return nil
}

func (m *memTokens) Consume(ctx context.Context, tokenValue string, now time.Time) (string, error) {
	row, ok := m.rows[tokenValue]
	if !ok || !row.Active(now) {
		return "", common.ErrorNotFound
	}
	consumed := now
	row.ConsumedAt = &consumed
	return row.UserID, nil
}

func (m *memTokens) Find(ctx context.Context, tokenValue string) (*models.ResetToken, error) {
	row, ok := m.rows[tokenValue]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memTokens) DeleteActiveByUser(ctx context.Context, userID string) error {
	for value, row := range m.rows {
		if row.UserID == userID && row.ConsumedAt == nil {
			delete(m.rows, value)
		}
	}
	return nil
}

type memBiometrics struct {
	rows map[string]models.Biometric
}

func (m *memBiometrics) Upsert(ctx context.Context, bio *models.Biometric) error {
	m.rows[bio.UserID] = *bio
	return nil
}

func (m *memBiometrics) Get(ctx context.Context, userID string) (*models.Biometric, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := row
	return &out, nil
}

type memRepoManager struct {
	creds *memCredentials
	toks  *memTokens
	bios  *memBiometrics
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Credentials(db dbx.DBTX) credentialsrepo.Repository {
	return m.creds
}
func (m *memRepoManager) ResetTokens(db dbx.DBTX) resettokensrepo.Repository {
	return m.toks
}
func (m *memRepoManager) Biometrics(db dbx.DBTX) biometricsrepo.Repository {
	return m.bios
}

type testEnv struct {
	srv  *httptest.Server
	mock sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rm := &memRepoManager{
		creds: &memCredentials{rows: make(map[string]models.Credential)},
		toks:  &memTokens{rows: make(map[string]*models.ResetToken)},
		bios:  &memBiometrics{rows: make(map[string]models.Biometric)},
	}

	key := make([]byte, cryptox.KeySize)
	for i := range key {
		key[i] = byte(i * 3)
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	cfg := &config.Config{ResetTokenTTL: 15 * time.Minute}
	tokens := services.NewTokenService(db, rm, cfg)
	vault := services.NewVaultService(db, rm, cipher, tokens)

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	api := NewServer(vault, logger)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, mock: mock}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s error: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s error: %v", path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["ok"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestStoreAndRetrieveCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/credentials", map[string]string{
		"user_id": "u1", "username": "alice", "password": "pw123", "hint": "pet",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("store: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.get(t, "/api/v1/credentials/u1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retrieve: want 200, got %d", resp.StatusCode)
	}
	creds := decodeBody[credentialsResponse](t, resp)
	if creds.Username != "alice" || creds.Password != "pw123" || creds.Hint != "pet" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	resp = env.get(t, "/api/v1/credentials/u2")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user: want 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStoreCredentials_Validation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/credentials", map[string]string{"user_id": "u1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for missing fields, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Post(env.srv.URL+"/api/v1/credentials", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for invalid json, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/credentials", map[string]string{
		"user_id": "u1", "username": "alice", "password": "pw123",
	})
	resp.Body.Close()

	// initiate runs one transaction, complete another, the replay rolls back
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	resp = env.postJSON(t, "/api/v1/reset/initiate", map[string]string{"user_id": "u1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initiate: want 200, got %d", resp.StatusCode)
	}
	issued := decodeBody[initiateResetResponse](t, resp)
	if issued.Token == "" {
		t.Fatalf("empty token")
	}
	if !issued.ExpiresAt.After(time.Now()) {
		t.Fatalf("token already expired: %v", issued.ExpiresAt)
	}

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	resp = env.postJSON(t, "/api/v1/reset/complete", map[string]string{
		"token": issued.Token, "new_password": "newpw",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.get(t, "/api/v1/credentials/u1")
	creds := decodeBody[credentialsResponse](t, resp)
	if creds.Username != "alice" || creds.Password != "newpw" {
		t.Fatalf("unexpected credentials after reset: %+v", creds)
	}

	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	resp = env.postJSON(t, "/api/v1/reset/complete", map[string]string{
		"token": issued.Token, "new_password": "other",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("replay: want 400, got %d", resp.StatusCode)
	}
	replay := decodeBody[errorResponse](t, resp)
	if replay.Error != "invalid or expired token" {
		t.Fatalf("token failures must collapse to one message, got %q", replay.Error)
	}
}

func TestInitiateReset_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/reset/initiate", map[string]string{"user_id": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBiometricsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/credentials", map[string]string{
		"user_id": "u1", "username": "alice", "password": "pw123",
	})
	resp.Body.Close()

	template := "ZmFjZS1lbmNvZGluZw==" // "face-encoding"

	resp = env.postJSON(t, "/api/v1/biometrics/u1", map[string]string{"template": template})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("enroll: want 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.postJSON(t, "/api/v1/biometrics/u1/verify", map[string]string{"template": template})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: want 200, got %d", resp.StatusCode)
	}
	verdict := decodeBody[verifyBiometricsResponse](t, resp)
	if !verdict.Match {
		t.Fatalf("want match")
	}

	resp = env.postJSON(t, "/api/v1/biometrics/u1/verify", map[string]string{"template": "b3RoZXI="})
	verdict = decodeBody[verifyBiometricsResponse](t, resp)
	if verdict.Match {
		t.Fatalf("want mismatch")
	}

	resp = env.postJSON(t, "/api/v1/biometrics/u1", map[string]string{"template": "!!!"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid base64: want 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestResponsesNeverLeakCiphertext(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/credentials", map[string]string{
		"user_id": "u1", "username": "alice", "password": "pw123",
	})
	body := decodeBody[map[string]any](t, resp)
	for _, forbidden := range []string{"ciphertext", "nonce", "master_key", "encrypted_username", "encrypted_password"} {
		if _, ok := body[forbidden]; ok {
			t.Fatalf("response leaks %q", forbidden)
		}
	}
}
