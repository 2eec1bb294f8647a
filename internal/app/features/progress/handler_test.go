package progress_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/features/progress"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*progress.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return progress.NewHandler(db, zap.NewNop()), db
}

func call(t *testing.T, fn http.HandlerFunc, user testutil.TestUser, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", path, body), user)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func listOf(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var ids []string
	testutil.DecodeJSON(t, rec, &ids)
	return ids
}

func TestListCompleted_NoRecord(t *testing.T) {
	h, _ := newTestHandler(t)
	user := testutil.StudentUser()

	rec := call(t, h.HandleListCompleted, user, "/api/list-completed",
		map[string]string{"courseId": primitive.NewObjectID().Hex()})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected [], got %q", body)
	}
}

func TestMarkCompleted_ListAndIncomplete(t *testing.T) {
	h, _ := newTestHandler(t)
	user := testutil.StudentUser()
	course := primitive.NewObjectID().Hex()

	for _, lesson := range []string{"L1", "L2", "L1"} {
		rec := call(t, h.HandleMarkCompleted, user, "/api/mark-completed",
			map[string]string{"courseId": course, "lessonId": lesson})
		if rec.Code != http.StatusOK {
			t.Fatalf("mark %s: expected 200, got %d", lesson, rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != `{"ok":true}` {
			t.Errorf("mark body = %q", body)
		}
	}

	ids := listOf(t, call(t, h.HandleListCompleted, user, "/api/list-completed", map[string]string{"courseId": course}))
	if len(ids) != 2 || ids[0] != "L1" || ids[1] != "L2" {
		t.Errorf("list = %v, want [L1 L2]", ids)
	}

	rec := call(t, h.HandleMarkIncomplete, user, "/api/mark-incomplete",
		map[string]string{"courseId": course, "lessonId": "L1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("incomplete: expected 200, got %d", rec.Code)
	}
	ids = listOf(t, call(t, h.HandleListCompleted, user, "/api/list-completed", map[string]string{"courseId": course}))
	if len(ids) != 1 || ids[0] != "L2" {
		t.Errorf("list = %v, want [L2]", ids)
	}

	// Another user's progress is separate.
	other := listOf(t, call(t, h.HandleListCompleted, testutil.StudentUser(), "/api/list-completed", map[string]string{"courseId": course}))
	if len(other) != 0 {
		t.Errorf("other user sees %v", other)
	}
}

func TestMarkIncomplete_NoRecordIsNoop(t *testing.T) {
	h, db := newTestHandler(t)
	user := testutil.StudentUser()

	rec := call(t, h.HandleMarkIncomplete, user, "/api/mark-incomplete",
		map[string]string{"courseId": primitive.NewObjectID().Hex(), "lessonId": "L1"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, _ := db.Collection("completeds").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("mark-incomplete must not create records, found %d", n)
	}
}

func TestMarkCompleted_ConcurrentFirstMarks(t *testing.T) {
	h, db := newTestHandler(t)
	user := testutil.StudentUser()
	course := primitive.NewObjectID()

	var wg sync.WaitGroup
	codes := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/mark-completed",
				map[string]string{"courseId": course.Hex(), "lessonId": string(rune('a' + i))}), user)
			rec := httptest.NewRecorder()
			h.HandleMarkCompleted(rec, req)
			codes <- rec.Code
		}(i)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Errorf("expected 200, got %d", code)
		}
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection("completeds").CountDocuments(ctx, bson.M{"user": user.ObjectID(), "course": course})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly one progress record, got %d", n)
	}
}

func TestQuestions(t *testing.T) {
	h, _ := newTestHandler(t)
	user := testutil.StudentUser()
	course := primitive.NewObjectID().Hex()

	call(t, h.HandleMarkCompletedQuestion, user, "/api/mark-completed-question",
		map[string]string{"courseId": course, "questionId": "Q1"})
	call(t, h.HandleMarkCompletedQuestion, user, "/api/mark-completed-question",
		map[string]string{"courseId": course, "questionId": "Q2"})
	call(t, h.HandleMarkIncompleteQuestion, user, "/api/mark-incomplete-question",
		map[string]string{"courseId": course, "questionId": "Q1"})

	ids := listOf(t, call(t, h.HandleListCompletedQuestion, user, "/api/list-completed-question",
		map[string]string{"courseId": course}))
	if len(ids) != 1 || ids[0] != "Q2" {
		t.Errorf("questions = %v, want [Q2]", ids)
	}

	// Question marks do not leak into lesson progress.
	lessons := listOf(t, call(t, h.HandleListCompleted, user, "/api/list-completed", map[string]string{"courseId": course}))
	if len(lessons) != 0 {
		t.Errorf("lessons = %v, want []", lessons)
	}
}

func TestValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	user := testutil.StudentUser()

	tests := []struct {
		name string
		fn   http.HandlerFunc
		body map[string]string
	}{
		{"bad course id", h.HandleMarkCompleted, map[string]string{"courseId": "nope", "lessonId": "L1"}},
		{"missing lesson id", h.HandleMarkCompleted, map[string]string{"courseId": primitive.NewObjectID().Hex()}},
		{"missing question id", h.HandleMarkCompletedQuestion, map[string]string{"courseId": primitive.NewObjectID().Hex()}},
		{"list without course", h.HandleListCompleted, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, tt.fn, user, "/api/x", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}
