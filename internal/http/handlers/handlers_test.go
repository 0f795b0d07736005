package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/andriyanb/artikel-be/internal/auth"
	"github.com/andriyanb/artikel-be/internal/config"
	"github.com/andriyanb/artikel-be/internal/models"
	"github.com/andriyanb/artikel-be/internal/server"
	"github.com/andriyanb/artikel-be/internal/storage"
	"github.com/andriyanb/artikel-be/internal/upload"
)

// memStore is an in-memory stand-in for the Postgres store, mirroring its
// uniqueness and transition semantics.
type memStore struct {
	mu            sync.Mutex
	users         []models.User
	articles      []models.Article
	nextUserID    int64
	nextArticleID int64
	failInsert    bool
}

var (
	_ storage.UserStore    = (*memStore)(nil)
	_ storage.ArticleStore = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{nextUserID: 1, nextArticleID: 1}
}

func (m *memStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = m.nextUserID
	m.nextUserID++
	user.CreatedAt = time.Now()
	m.users = append(m.users, user)
	return user, nil
}

func (m *memStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *memStore) CreateArticle(_ context.Context, article models.Article) (models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return models.Article{}, context.DeadlineExceeded
	}
	article.ID = m.nextArticleID
	m.nextArticleID++
	article.CreatedAt = time.Now()
	m.articles = append(m.articles, article)
	return article, nil
}

func (m *memStore) ListByStatus(_ context.Context, status string) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Article, 0)
	for _, a := range m.articles {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) SetStatus(_ context.Context, articleID int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.articles {
		if a.ID != articleID {
			continue
		}
		switch a.Status {
		case models.StatusPending:
			m.articles[i].Status = status
			return nil
		case status:
			return nil
		default:
			return storage.ErrAlreadyReviewed
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) FindApprovedBySlug(_ context.Context, slug string) (models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var match *models.Article
	for i := range m.articles {
		a := &m.articles[i]
		if a.Slug == slug && a.Status == models.StatusApproved {
			if match == nil || a.ID > match.ID {
				match = a
			}
		}
	}
	if match == nil {
		return models.Article{}, storage.ErrNotFound
	}
	return *match, nil
}

func (m *memStore) articleByID(id int64) (models.Article, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.ID == id {
			return a, true
		}
	}
	return models.Article{}, false
}

// env bundles everything a handler test needs.
type env struct {
	store   *memStore
	uploads *upload.Store
	tokens  *auth.TokenManager
	ts      *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := config.Config{
		Port:           "8080",
		JWTSecret:      "test-secret",
		JWTIssuer:      "artikel-test",
		JWTTTL:         time.Hour,
		CORSOrigins:    []string{"*"},
		PublicBaseURL:  "http://localhost:8080",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 5 << 20,
	}

	store := newMemStore()
	uploads, err := upload.NewStore(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxUploadBytes)
	require.NoError(t, err)

	router := server.NewRouter(cfg, store, store, uploads, zap.NewNop().Sugar())
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &env{
		store:   store,
		uploads: uploads,
		tokens:  auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		ts:      ts,
	}
}

// seedUser inserts a user directly and returns it with a valid bearer token.
func (e *env) seedUser(t *testing.T, username, role string) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := e.store.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		Phone:        "+628123456789",
		Role:         role,
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	token, err := e.tokens.Generate(user)
	require.NoError(t, err)
	return user, token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, e.ts.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (e *env) postJSON(t *testing.T, path, token string, payload any) (*http.Response, envelope) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, http.MethodPost, path, token, bytes.NewReader(body), "application/json")
}

// submitForm builds the multipart body the submit endpoint expects. An empty
// filename omits the image part entirely.
func submitForm(t *testing.T, title, description, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", description))
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
