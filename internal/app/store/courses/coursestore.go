// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/slugs"
	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrSlugTaken is returned when the unique slug index rejects a course.
	ErrSlugTaken = errors.New("a course with this title already exists")
	// ErrNotFound is returned when no course matches.
	ErrNotFound = errors.New("course not found")
	// ErrNotOwner is returned when the course exists but belongs to another instructor.
	ErrNotOwner = errors.New("course belongs to another instructor")
	// ErrLessonNotFound is returned when the course has no lesson with the id.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrQuestionNotFound is returned when the course has no question with the id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNameRequired is returned by Create when the name is blank.
	ErrNameRequired = errors.New("course name is required")
)

type Store struct {
	c     *mongo.Collection
	users *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("courses"),
		users: db.Collection("users"),
	}
}

// Fields are the course attributes an instructor may edit after creation.
// Slug, instructor, lessons, questions and published are not among them.
type Fields struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Paid        bool
	Image       *models.AssetRef
}

// Create inserts a course owned by c.Instructor. The slug is derived from the
// name; the unique slug index decides races, surfacing as ErrSlugTaken.
// The returned course has its instructor populated like GetBySlug.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return models.Course{}, ErrNameRequired
	}
	c.ID = primitive.NewObjectID()
	c.Slug = slugs.Make(c.Name)
	c.Published = false
	if c.Lessons == nil {
		c.Lessons = []models.Lesson{}
	}
	if c.Questions == nil {
		c.Questions = []models.Question{}
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = nil

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrSlugTaken
		}
		return models.Course{}, err
	}
	// The course is stored; a failed lookup only leaves InstructorInfo nil.
	_ = s.populate(ctx, []*models.Course{&c})
	return c, nil
}

// GetBySlug returns the course with slug and its instructor populated.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Course, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

// GetByID returns the course with id and its instructor populated.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrNotFound
		}
		return models.Course{}, err
	}
	if err := s.populate(ctx, []*models.Course{&c}); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// ListPublished returns every published course, newest first.
func (s *Store) ListPublished(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{"published": true})
}

// ListByInstructor returns all courses owned by instructor, newest first.
func (s *Store) ListByInstructor(ctx context.Context, instructor primitive.ObjectID) ([]models.Course, error) {
	return s.find(ctx, bson.M{"instructor": instructor})
}

// ListByIDs returns the courses whose ids are in ids, newest first.
// Ids with no course are skipped.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	ptrs := make([]*models.Course, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := s.populate(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// populate fills InstructorInfo from the users collection with one query.
// Courses whose instructor has no users document keep InstructorInfo nil.
func (s *Store) populate(ctx context.Context, courses []*models.Course) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, c := range courses {
		if !c.Instructor.IsZero() && !seen[c.Instructor] {
			seen[c.Instructor] = true
			ids = append(ids, c.Instructor)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	proj := options.Find().SetProjection(bson.M{"_id": 1, "name": 1})
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.InstructorRef, len(ids))
	for cur.Next(ctx) {
		var ref models.InstructorRef
		if err := cur.Decode(&ref); err != nil {
			return err
		}
		byID[ref.ID] = ref
	}
	if err := cur.Err(); err != nil {
		return err
	}
	for _, c := range courses {
		if ref, ok := byID[c.Instructor]; ok {
			r := ref
			c.InstructorInfo = &r
		}
	}
	return nil
}

// Update replaces the editable fields of the course with id, provided owner
// is its instructor.
func (s *Store) Update(ctx context.Context, id, owner primitive.ObjectID, f Fields) (models.Course, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return models.Course{}, ErrNameRequired
	}
	set := bson.M{
		"name":        f.Name,
		"description": f.Description,
		"category":    f.Category,
		"price":       f.Price,
		"paid":        f.Paid,
		"updated_at":  time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if f.Image.IsZero() {
		update["$unset"] = bson.M{"image": ""}
	} else {
		set["image"] = f.Image
	}
	return s.ownedUpdate(ctx, id, owner, nil, update)
}

// SetPublished toggles the published flag.
func (s *Store) SetPublished(ctx context.Context, id, owner primitive.ObjectID, published bool) (models.Course, error) {
	return s.ownedUpdate(ctx, id, owner, nil, bson.M{"$set": bson.M{
		"published":  published,
		"updated_at": time.Now().UTC(),
	}})
}

// AddLesson appends l with a fresh id and a slug derived from its title.
func (s *Store) AddLesson(ctx context.Context, id, owner primitive.ObjectID, l models.Lesson) (models.Course, error) {
	l.ID = primitive.NewObjectID()
	l.Slug = slugs.Make(l.Title)
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = nil
	return s.ownedUpdate(ctx, id, owner, nil, bson.M{"$push": bson.M{"lessons": l}})
}

// UpdateLesson rewrites the lesson l.ID inside the course with id.
func (s *Store) UpdateLesson(ctx context.Context, id, owner primitive.ObjectID, l models.Lesson) (models.Course, error) {
	set := bson.M{
		"lessons.$.title":        l.Title,
		"lessons.$.slug":         slugs.Make(l.Title),
		"lessons.$.content":      l.Content,
		"lessons.$.free_preview": l.FreePreview,
		"lessons.$.updated_at":   time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if l.Video.IsZero() {
		update["$unset"] = bson.M{"lessons.$.video": ""}
	} else {
		set["lessons.$.video"] = l.Video
	}
	c, err := s.ownedUpdate(ctx, id, owner, bson.M{"lessons._id": l.ID}, update)
	if errors.Is(err, errSubdocMissing) {
		return models.Course{}, ErrLessonNotFound
	}
	return c, err
}

// RemoveLesson pulls the lesson with lessonID. Removing an absent lesson
// succeeds and leaves the course unchanged.
func (s *Store) RemoveLesson(ctx context.Context, id, owner, lessonID primitive.ObjectID) (models.Course, error) {
	return s.ownedUpdate(ctx, id, owner, nil, bson.M{
		"$pull": bson.M{"lessons": bson.M{"_id": lessonID}},
	})
}

// AddQuestion appends q with a fresh id and a slug derived from its title.
func (s *Store) AddQuestion(ctx context.Context, id, owner primitive.ObjectID, q models.Question) (models.Course, error) {
	q.ID = primitive.NewObjectID()
	q.Slug = slugs.Make(q.Title)
	if q.Options == nil {
		q.Options = []string{}
	}
	q.CreatedAt = time.Now().UTC()
	q.UpdatedAt = nil
	return s.ownedUpdate(ctx, id, owner, nil, bson.M{"$push": bson.M{"questions": q}})
}

// UpdateQuestion rewrites the question q.ID inside the course with id.
func (s *Store) UpdateQuestion(ctx context.Context, id, owner primitive.ObjectID, q models.Question) (models.Course, error) {
	if q.Options == nil {
		q.Options = []string{}
	}
	c, err := s.ownedUpdate(ctx, id, owner, bson.M{"questions._id": q.ID}, bson.M{"$set": bson.M{
		"questions.$.title":      q.Title,
		"questions.$.slug":       slugs.Make(q.Title),
		"questions.$.content":    q.Content,
		"questions.$.answer":     q.Answer,
		"questions.$.options":    q.Options,
		"questions.$.updated_at": time.Now().UTC(),
	}})
	if errors.Is(err, errSubdocMissing) {
		return models.Course{}, ErrQuestionNotFound
	}
	return c, err
}

// RemoveQuestion pulls the question with questionID.
func (s *Store) RemoveQuestion(ctx context.Context, id, owner, questionID primitive.ObjectID) (models.Course, error) {
	return s.ownedUpdate(ctx, id, owner, nil, bson.M{
		"$pull": bson.M{"questions": bson.M{"_id": questionID}},
	})
}

var errSubdocMissing = errors.New("subdocument missing")

// ownedUpdate applies update to the course {_id: id, instructor: owner} plus
// extra, in one FindOneAndUpdate, and returns the updated course. When
// nothing matches it reports why: ErrNotFound, ErrNotOwner, or
// errSubdocMissing when only the extra filter failed.
func (s *Store) ownedUpdate(ctx context.Context, id, owner primitive.ObjectID, extra bson.M, update bson.M) (models.Course, error) {
	filter := bson.M{"_id": id, "instructor": owner}
	for k, v := range extra {
		filter[k] = v
	}

	var c models.Course
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if err == nil {
		if err := s.populate(ctx, []*models.Course{&c}); err != nil {
			return models.Course{}, err
		}
		return c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrSlugTaken
		}
		return models.Course{}, err
	}

	var stored struct {
		Instructor primitive.ObjectID `bson:"instructor"`
	}
	proj := options.FindOne().SetProjection(bson.M{"instructor": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, proj).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrNotFound
		}
		return models.Course{}, err
	}
	if stored.Instructor != owner {
		return models.Course{}, ErrNotOwner
	}
	if extra == nil {
		// ownership changed between the two reads
		return models.Course{}, ErrNotFound
	}
	return models.Course{}, errSubdocMissing
}
