package http

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/config"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/service"
	"github.com/robbertpopa/itec-web-2025/internal/service/auth"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/discussion"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/enrollment"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/management"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/query"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson/schedule"
	"github.com/robbertpopa/itec-web-2025/internal/service/user"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
	"github.com/robbertpopa/itec-web-2025/internal/storage/memory"
	"github.com/robbertpopa/itec-web-2025/internal/storage/repository"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logger.Discard()
	store := memory.New()
	blobs := blob.NewMemory()

	courses := repository.NewCourseRepo(store)
	users := user.NewUserService(l, repository.NewUserRepo(store), blobs)
	manager := auth.NewJWTManager("router-secret", "test", time.Minute, time.Hour)

	s := service.Collection{
		Auth:       auth.NewAuthService(l, manager, repository.NewAccountRepo(store), repository.NewTokensRepo(store)),
		Users:      users,
		Courses:    query.NewCourseQueryService(l, courses, users, listing.NewBlobCovers(blobs, ""), nil, listing.Options{PageSize: 8}),
		Management: management.NewCourseManagementService(l, courses, nil, blobs, listing.DefaultCoverPath),
		Enrollment: enrollment.NewEnrollmentService(l, courses, repository.NewEnrollmentRepo(store)),
		Discussion: discussion.NewDiscussionService(l, courses, repository.NewDiscussionRepo(store), users),
		Lessons:    lesson.NewLessonService(l, courses, nil, blobs, repository.NewQueueRepo(store)),
		Schedule:   schedule.NewScheduleService(l, repository.NewScheduleRepo(store)),
	}

	cfg := &config.Config{
		Env:        "local",
		HTTPServer: config.HTTPServer{MaxUploadSize: 1 << 20},
		Listing:    config.Listing{RecentCount: 4},
		RateLimit:  config.RateLimit{RPS: 1000, Burst: 1000},
		CORS:       config.CORS{AllowOrigins: []string{"http://localhost:3000"}},
	}
	return InitRoutes(l, cfg, s)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func signUp(t *testing.T, r *gin.Engine, email, fullName string) (token, uid string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{
		"email": email, "password": "secret123", "fullName": fullName,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uid = body["id"].(string)

	w, body = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["access_token"].(string), uid
}

func createCourse(t *testing.T, r *gin.Engine, token, name string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", name))
	require.NoError(t, mw.WriteField("description", "about "+name))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/courses", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["courseId"].(string)
}

func TestStatus(t *testing.T) {
	r := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/v1/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Available", body["status"])
}

func TestCourseFlow(t *testing.T) {
	r := newTestRouter(t)
	token, uid := signUp(t, r, "ada@example.com", "Ada Lovelace")

	w, body := doJSON(t, r, http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uid, body["id"])
	assert.Equal(t, "Ada Lovelace", body["fullName"])
	assert.Equal(t, "ada@example.com", body["email"])

	id := createCourse(t, r, token, "Intro to Go")

	w, body = doJSON(t, r, http.MethodGet, "/v1/courses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	items := body["courses"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, id, first["id"])
	assert.Equal(t, "Ada Lovelace", first["authorName"])

	w, body = doJSON(t, r, http.MethodGet, "/v1/courses?q=rust", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["courses"])
	assert.Equal(t, listing.EmptySearchMessage, body["message"])

	w, body = doJSON(t, r, http.MethodGet, "/v1/courses/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	course := body["course"].(map[string]interface{})
	assert.Equal(t, "Intro to Go", course["name"])
	assert.Equal(t, []interface{}{}, course["lessons"])

	w, _ = doJSON(t, r, http.MethodGet, "/v1/courses/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/v1/courses/"+id+"/cover", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/v1/courses/"+id+"/lessons", token, gin.H{"lessonIndex": 0, "lessonName": "Basics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "courses/"+id+"/0/main.md", body["filePath"])

	w, body = doJSON(t, r, http.MethodPost, "/v1/courses/"+id+"/lessons/0/summaries", token, gin.H{"filePath": "main.md"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.NotEmpty(t, body["taskId"])

	w, body = doJSON(t, r, http.MethodGet, "/v1/catalog?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["courses"], 1)
}

func TestCourseOwnership(t *testing.T) {
	r := newTestRouter(t)
	owner, _ := signUp(t, r, "owner@example.com", "Owner")
	other, _ := signUp(t, r, "other@example.com", "Other")
	id := createCourse(t, r, owner, "Owned")

	w, _ := doJSON(t, r, http.MethodPost, "/v1/courses/"+id+"/lessons", other, gin.H{"lessonIndex": 0, "lessonName": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollmentsAndDiscussions(t *testing.T) {
	r := newTestRouter(t)
	token, _ := signUp(t, r, "ada@example.com", "Ada")
	id := createCourse(t, r, token, "Go")

	w, _ := doJSON(t, r, http.MethodPost, "/v1/enrollments", token, gin.H{"courseId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/enrollments", token, gin.H{"courseId": id})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/v1/enrollments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["enrollments"], 1)

	w, _ = doJSON(t, r, http.MethodDelete, "/v1/enrollments", token, gin.H{"courseId": id})
	require.Equal(t, http.StatusOK, w.Code)
	_, body = doJSON(t, r, http.MethodGet, "/v1/enrollments", token, nil)
	assert.Empty(t, body["enrollments"])

	w, _ = doJSON(t, r, http.MethodPost, "/v1/discussions", token, gin.H{"courseId": id, "message": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = doJSON(t, r, http.MethodGet, "/v1/discussions/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := body["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, "Ada", comments[0].(map[string]interface{})["userName"])
}

func TestProgrammedLessons(t *testing.T) {
	r := newTestRouter(t)
	token, uid := signUp(t, r, "ada@example.com", "Ada")
	_, other := signUp(t, r, "bob@example.com", "Bob")

	w, _ := doJSON(t, r, http.MethodGet, "/v1/users/"+other+"/programmed-lessons", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := doJSON(t, r, http.MethodPost, "/v1/users/"+uid+"/programmed-lessons", token, gin.H{"date": "2025-04-05", "isMarked": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2025-04-05T00:00:00.000Z", body["date"])

	w, body = doJSON(t, r, http.MethodGet, "/v1/users/"+uid+"/programmed-lessons", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["programmedLessons"], 1)

	w, _ = doJSON(t, r, http.MethodPost, "/v1/users/"+uid+"/programmed-lessons", token, gin.H{"date": "yesterday", "isMarked": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchDisabled(t *testing.T) {
	r := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodGet, "/v1/courses/search?q=go", "", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestUserProfile(t *testing.T) {
	r := newTestRouter(t)
	token, uid := signUp(t, r, "ada@example.com", "Ada")

	w, body := doJSON(t, r, http.MethodGet, "/v1/users/"+uid, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", body["fullName"])

	w, _ = doJSON(t, r, http.MethodGet, "/v1/users/nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// hugePNG is a valid PNG whose header declares 12000x12000 pixels.
func hugePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], 12000)
	binary.BigEndian.PutUint32(data[20:24], 12000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func uploadImage(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, img []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write(img)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOversizedImagesAreRejected(t *testing.T) {
	r := newTestRouter(t)
	token, _ := signUp(t, r, "ada@example.com", "Ada")
	img := hugePNG(t)

	// A rejected cover does not block course creation.
	w := uploadImage(t, r, http.MethodPost, "/v1/courses", token, map[string]string{"name": "Go"}, img)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["courseId"].(string)
	w, _ = doJSON(t, r, http.MethodGet, "/v1/courses/"+id+"/cover", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = uploadImage(t, r, http.MethodPut, "/v1/courses/"+id+"/cover", token, nil, img)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = uploadImage(t, r, http.MethodPost, "/v1/users", token, map[string]string{"full_name": "Ada"}, img)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
