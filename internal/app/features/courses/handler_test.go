package courses_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/features/courses"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*courses.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return courses.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db), db
}

func TestHandleCreate(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	instructor := testutil.InstructorUser()
	fx.CreateUser(ctx, instructor)

	req := testutil.NewJSONRequest(t, "POST", "/api/course", map[string]any{
		"name":        "Intro to X",
		"description": "all about X",
		"price":       0,
		"paid":        false,
	})
	req = testutil.WithUser(req, instructor)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Course
	testutil.DecodeJSON(t, rec, &got)
	if got.Slug != "intro-to-x" {
		t.Errorf("slug = %q, want intro-to-x", got.Slug)
	}
	if got.Published {
		t.Error("new course should be unpublished")
	}
	if got.InstructorInfo == nil || got.InstructorInfo.ID.Hex() != instructor.ID || got.InstructorInfo.Name != instructor.Name {
		t.Errorf("instructor = %+v, want %s/%s", got.InstructorInfo, instructor.ID, instructor.Name)
	}

	// Same derived slug: 409 "Title is taken".
	req = testutil.NewJSONRequest(t, "POST", "/api/course", map[string]any{"name": "intro to x"})
	req = testutil.WithUser(req, instructor)
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "Title is taken\n" {
		t.Errorf("body = %q", body)
	}
}

func TestHandleCreate_BlankName(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "POST", "/api/course", map[string]any{"name": " "})
	req = testutil.WithUser(req, testutil.InstructorUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCreate_MalformedBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.WithUser(httptest.NewRequest("POST", "/api/course", strings.NewReader("{not json")), testutil.InstructorUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRead(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := testutil.InstructorUser()
	fx.CreateUser(ctx, instructor)
	c := fx.CreateCourse(ctx, instructor.ObjectID(), "Readable", testutil.WithLessons("One"))

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/api/course/"+c.Slug), "slug", c.Slug)
	rec := httptest.NewRecorder()
	h.HandleRead(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		ID         string `json:"_id"`
		Instructor struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		} `json:"instructor"`
		Lessons []models.Lesson `json:"lessons"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.ID != c.ID.Hex() {
		t.Errorf("_id = %q, want %q", got.ID, c.ID.Hex())
	}
	if got.Instructor.ID != instructor.ID || got.Instructor.Name != instructor.Name {
		t.Errorf("instructor not populated: %+v", got.Instructor)
	}
	if len(got.Lessons) != 1 {
		t.Errorf("expected 1 lesson, got %d", len(got.Lessons))
	}
}

func TestHandleRead_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/api/course/missing"), "slug", "missing")
	rec := httptest.NewRecorder()
	h.HandleRead(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleRead_MalformedSlug(t *testing.T) {
	h, _, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// A document whose slug is not in slug form is never matched by path.
	bad := "Not A Slug"
	if _, err := db.Collection("courses").InsertOne(ctx, models.Course{
		ID:        primitive.NewObjectID(),
		Slug:      bad,
		Name:      "Not A Slug",
		Published: true,
		Lessons:   []models.Lesson{},
		Questions: []models.Question{},
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	for _, slug := range []string{bad, "UPPER", "-leading", "trailing-", "semi;colon"} {
		req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/api/course/x"), "slug", slug)
		rec := httptest.NewRecorder()
		h.HandleRead(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("slug %q: expected 404, got %d", slug, rec.Code)
		}
	}
}

func TestHandleUpdate_MalformedSlug(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, "PUT", "/api/course/x", map[string]any{"name": "Edited"})
	req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.InstructorUser()), "slug", "Bad Slug")
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleList_OnlyPublished(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	fx.CreateCourse(ctx, owner, "Hidden")
	fx.CreateCourse(ctx, owner, "Shown", testutil.Published())

	rec := httptest.NewRecorder()
	h.HandleList(rec, testutil.NewRequest("GET", "/api/courses"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Course
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 1 || got[0].Name != "Shown" {
		t.Errorf("unexpected list: %+v", got)
	}
}

func TestHandleInstructorCourses(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := testutil.InstructorUser()
	fx.CreateCourse(ctx, me.ObjectID(), "Mine Draft")
	fx.CreateCourse(ctx, me.ObjectID(), "Mine Live", testutil.Published())
	fx.CreateCourse(ctx, primitive.NewObjectID(), "Not Mine", testutil.Published())

	req := testutil.WithUser(testutil.NewRequest("GET", "/api/instructor-courses"), me)
	rec := httptest.NewRecorder()
	h.HandleInstructorCourses(rec, req)

	var got []models.Course
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Errorf("expected 2 courses, got %d", len(got))
	}
}

func TestHandleUpdate_OwnerAndNonOwner(t *testing.T) {
	h, fx, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Editable")

	body := map[string]any{"name": "Edited", "price": 15, "paid": true, "slug": "hijack", "published": true}

	// Non-owner: 400, course unchanged.
	req := testutil.NewJSONRequest(t, "PUT", "/api/course/"+c.Slug, body)
	req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.InstructorUser()), "slug", c.Slug)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-owner: expected 400, got %d", rec.Code)
	}

	var stored models.Course
	if err := db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.Name != "Editable" {
		t.Errorf("non-owner changed name to %q", stored.Name)
	}

	// Owner: 200, slug and published not writable.
	req = testutil.NewJSONRequest(t, "PUT", "/api/course/"+c.Slug, body)
	req = testutil.WithChiURLParam(testutil.WithUser(req, owner), "slug", c.Slug)
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Course
	testutil.DecodeJSON(t, rec, &got)
	if got.Name != "Edited" || got.Price != 15 || !got.Paid {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Slug != c.Slug || got.Published {
		t.Errorf("immutable fields changed: slug=%q published=%v", got.Slug, got.Published)
	}
}

func TestHandlePublish(t *testing.T) {
	h, fx, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Publishable")

	tests := []struct {
		name          string
		user          testutil.TestUser
		courseID      string
		publish       bool
		want          int
		wantPublished bool
	}{
		{"non-owner cannot publish", testutil.InstructorUser(), c.ID.Hex(), true, http.StatusBadRequest, false},
		{"owner publishes", owner, c.ID.Hex(), true, http.StatusOK, true},
		{"owner publishes again", owner, c.ID.Hex(), true, http.StatusOK, true},
		{"non-owner cannot unpublish", testutil.InstructorUser(), c.ID.Hex(), false, http.StatusBadRequest, true},
		{"bad id", owner, "xyz", true, http.StatusBadRequest, true},
		{"unknown course", owner, primitive.NewObjectID().Hex(), true, http.StatusNotFound, true},
		{"owner unpublishes", owner, c.ID.Hex(), false, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/course/unpublish/" + tt.courseID
			handle := h.HandleUnpublish
			if tt.publish {
				path = "/api/course/publish/" + tt.courseID
				handle = h.HandlePublish
			}
			req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest("PUT", path), tt.user), "courseId", tt.courseID)
			rec := httptest.NewRecorder()
			handle(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if rec.Code == http.StatusOK {
				var got models.Course
				testutil.DecodeJSON(t, rec, &got)
				if got.Published != tt.publish {
					t.Errorf("published = %v, want %v", got.Published, tt.publish)
				}
			}

			var stored models.Course
			if err := db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored); err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if stored.Published != tt.wantPublished {
				t.Errorf("stored published = %v, want %v", stored.Published, tt.wantPublished)
			}
		})
	}
}

func lessonRequest(t *testing.T, method, slug, instructorID string, user testutil.TestUser, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, "/api/course/lesson/"+slug+"/"+instructorID, body)
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "slug", slug)
	return testutil.WithChiURLParam(req, "instructorId", instructorID)
}

func TestHandleAddLesson(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	fx.CreateUser(ctx, owner)
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Lesson Host")

	body := map[string]any{
		"title":   "Getting Started",
		"content": "hello",
		"video":   map[string]string{"Bucket": "media", "Key": "v.mp4"},
	}
	rec := httptest.NewRecorder()
	h.HandleAddLesson(rec, lessonRequest(t, "POST", c.Slug, owner.ID, owner, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Course
	testutil.DecodeJSON(t, rec, &got)
	if len(got.Lessons) != 1 || got.Lessons[0].Slug != "getting-started" {
		t.Fatalf("lesson not appended: %+v", got.Lessons)
	}
	if got.Lessons[0].Video == nil || got.Lessons[0].Video.Key != "v.mp4" {
		t.Errorf("video not stored: %+v", got.Lessons[0].Video)
	}
	if got.InstructorInfo == nil || got.InstructorInfo.Name != owner.Name {
		t.Errorf("instructor not populated: %+v", got.InstructorInfo)
	}
}

func TestHandleAddLesson_Gates(t *testing.T) {
	h, fx, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Gated")
	intruder := testutil.InstructorUser()
	body := map[string]any{"title": "Spam"}

	// Path id is not the caller.
	rec := httptest.NewRecorder()
	h.HandleAddLesson(rec, lessonRequest(t, "POST", c.Slug, owner.ID, intruder, body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("path mismatch: expected 400, got %d", rec.Code)
	}

	// Path id is the caller, but the caller does not own the course.
	rec = httptest.NewRecorder()
	h.HandleAddLesson(rec, lessonRequest(t, "POST", c.Slug, intruder.ID, intruder, body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("not owner: expected 400, got %d", rec.Code)
	}

	// Missing title.
	rec = httptest.NewRecorder()
	h.HandleAddLesson(rec, lessonRequest(t, "POST", c.Slug, owner.ID, owner, map[string]any{"content": "x"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title: expected 400, got %d", rec.Code)
	}

	var stored models.Course
	_ = db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored)
	if len(stored.Lessons) != 0 {
		t.Errorf("rejected requests added lessons: %+v", stored.Lessons)
	}
}

func TestHandleUpdateAndRemoveLesson(t *testing.T) {
	h, fx, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Lesson Edits", testutil.WithLessons("Draft Lesson"))
	lessonID := c.Lessons[0].ID.Hex()

	// Non-owner update leaves the lesson unchanged.
	rec := httptest.NewRecorder()
	intruder := testutil.InstructorUser()
	h.HandleUpdateLesson(rec, lessonRequest(t, "PUT", c.Slug, intruder.ID, intruder,
		map[string]any{"_id": lessonID, "title": "Defaced"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-owner update: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleUpdateLesson(rec, lessonRequest(t, "PUT", c.Slug, owner.ID, owner,
		map[string]any{"_id": lessonID, "title": "Final Lesson", "free_preview": true}))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "{\"ok\":true}\n" {
		t.Errorf("body = %q", rec.Body.String())
	}

	var stored models.Course
	_ = db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored)
	if stored.Lessons[0].Title != "Final Lesson" || !stored.Lessons[0].FreePreview {
		t.Errorf("lesson not updated: %+v", stored.Lessons[0])
	}

	// Unknown lesson id: 404.
	rec = httptest.NewRecorder()
	h.HandleUpdateLesson(rec, lessonRequest(t, "PUT", c.Slug, owner.ID, owner,
		map[string]any{"_id": primitive.NewObjectID().Hex(), "title": "x"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown lesson: expected 404, got %d", rec.Code)
	}

	// Remove.
	req := testutil.WithUser(testutil.NewRequest("PUT", "/api/course/"+c.Slug+"/"+lessonID), owner)
	req = testutil.WithChiURLParam(req, "slug", c.Slug)
	req = testutil.WithChiURLParam(req, "lessonId", lessonID)
	rec = httptest.NewRecorder()
	h.HandleRemoveLesson(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	_ = db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored)
	if len(stored.Lessons) != 0 {
		t.Errorf("lesson not removed: %+v", stored.Lessons)
	}
}

func TestHandleQuestions(t *testing.T) {
	h, fx, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.InstructorUser()
	c := fx.CreateCourse(ctx, owner.ObjectID(), "Quiz Course")

	questionReq := func(method string, body any) *http.Request {
		req := testutil.NewJSONRequest(t, method, "/api/course/question/"+c.Slug+"/"+owner.ID, body)
		req = testutil.WithUser(req, owner)
		req = testutil.WithChiURLParam(req, "slug", c.Slug)
		return testutil.WithChiURLParam(req, "instructorId", owner.ID)
	}

	rec := httptest.NewRecorder()
	h.HandleAddQuestion(rec, questionReq("POST", map[string]any{
		"title": "Pick one", "answer": "b", "options": []string{"a", "b", "c"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Course
	testutil.DecodeJSON(t, rec, &got)
	if len(got.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got.Questions))
	}
	q := got.Questions[0]
	if q.Options[0] != "a" || q.Options[2] != "c" {
		t.Errorf("options reordered: %v", q.Options)
	}

	rec = httptest.NewRecorder()
	h.HandleUpdateQuestion(rec, questionReq("PUT", map[string]any{
		"_id": q.ID.Hex(), "title": "Pick one", "answer": "c", "options": []string{"a", "b", "c"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	req := testutil.WithUser(testutil.NewRequest("DELETE", "/api/course/question/"+c.Slug+"/"+q.ID.Hex()), owner)
	req = testutil.WithChiURLParam(req, "slug", c.Slug)
	req = testutil.WithChiURLParam(req, "questionId", q.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleRemoveQuestion(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}

	var stored models.Course
	_ = db.Collection("courses").FindOne(ctx, bson.M{"_id": c.ID}).Decode(&stored)
	if len(stored.Questions) != 0 {
		t.Errorf("question not removed: %+v", stored.Questions)
	}
}

func TestRegister_SessionRequired(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateCourse(ctx, primitive.NewObjectID(), "Public Course", testutil.Published())

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Route("/api", func(api chi.Router) {
		courses.Register(api, h, sm)
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/courses", http.StatusOK},
		{"GET", "/api/course/public-course", http.StatusOK},
		{"POST", "/api/course", http.StatusUnauthorized},
		{"GET", "/api/instructor-courses", http.StatusUnauthorized},
		{"PUT", "/api/course/publish/" + primitive.NewObjectID().Hex(), http.StatusUnauthorized},
		{"DELETE", "/api/course/question/x/y", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
