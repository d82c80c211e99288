package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agencycms/internal/auth"
	"agencycms/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens a fresh in-memory database with the full schema. The
// shared cache keeps the database alive across pool connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// newTestAuthService builds an auth service over a throwaway RSA key.
func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	service, err := auth.NewAuthService(privatePEM, publicPEM, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

// createTestUser stores a user and returns it with a signed access token.
func createTestUser(t *testing.T, db *gorm.DB, authService *auth.AuthService, email, role string) (database.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password-123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := database.User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	pair, err := authService.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	return user, pair.AccessToken
}

// fakeStorage satisfies ObjectStorage without a MinIO server.
type fakeStorage struct {
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) PublicURL(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	return "https://cdn.test/" + objectKey
}

func (f *fakeStorage) ThumbnailURL(objectKey string, width, height int) string {
	base := f.PublicURL(objectKey)
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s?width=%d&height=%d&fit=cover", base, width, height)
}

func (f *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.uploads[objectName] = data
	return &minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://cdn.test/presigned/" + objectKey, nil
}

// fakeTokenStore is an in-memory TokenStore for auth tests.
type fakeTokenStore struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		values:   make(map[string]string),
		counters: make(map[string]int64),
	}
}

func (f *fakeTokenStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeTokenStore) Expire(_ context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (f *fakeTokenStore) TTL(_ context.Context, key string) *redis.DurationCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return redis.NewDurationResult(time.Minute, nil)
	}
	return redis.NewDurationResult(-2*time.Nanosecond, nil)
}

func (f *fakeTokenStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeTokenStore) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value, ok := f.values[key]; ok {
		return redis.NewStringResult(value, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeTokenStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	tasks []*asynq.Task
}

func (f *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type()}, nil
}

// testEnv wires every handler over the given database and fakes. Set
// scanErr to make the upload scanner reject files.
type testEnv struct {
	db      *gorm.DB
	auth    *auth.AuthService
	storage *fakeStorage
	queue   *fakeQueue
	router  *gin.Engine
	scanErr error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:      newTestDB(t),
		auth:    newTestAuthService(t),
		storage: newFakeStorage(),
		queue:   &fakeQueue{},
	}
	db, authService, storage, queue := env.db, env.auth, env.storage, env.queue
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	scan := func(*multipart.FileHeader) error { return env.scanErr }

	router := NewRouter(discard)
	RegisterRoutes(router, authService, Handlers{
		Auth:           NewAuthHandler(db, authService, newFakeTokenStore(), discard, 10, 5, time.Minute),
		Assets:         NewAssetHandler(storage, discard, scan, 10<<20),
		Services:       NewServiceHandler(db, storage),
		Industries:     NewIndustryHandler(db),
		Projects:       NewProjectHandler(db, storage),
		ProjectTags:    NewProjectTagHandler(db),
		Testimonials:   NewTestimonialHandler(db, storage),
		BlogCategories: NewBlogCategoryHandler(db),
		BlogTags:       NewBlogTagHandler(db),
		BlogPosts:      NewBlogHandler(db, storage),
		Packages:       NewPackageHandler(db),
		Leads:          NewLeadHandler(db, queue),
		TeamMembers:    NewTeamMemberHandler(db, storage),
		Jobs:           NewJobHandler(db),
		Applications:   NewJobApplicationHandler(db, storage, queue, scan, 10<<20),
		FAQs:           NewFAQHandler(db),
		Invoices:       NewInvoiceHandler(db),
		Settings:       NewSettingsHandler(db),
		Users:          NewUserHandler(db, authService, storage),
	})

	env.router = router
	return env
}

// do performs a JSON request against the test router.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response body.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
