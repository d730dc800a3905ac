package tablestore

import (
	"testing"
	"time"

	"coursedeck/internal/domain"
)

func TestCourseFromRecordNestedData(t *testing.T) {
	rec, ok := recordFromBag(map[string]any{
		"id": "c1",
		"data": map[string]any{
			"title":      "X",
			"priceCents": float64(999),
		},
	})
	if !ok {
		t.Fatal("expected record")
	}
	course, ok := CourseFromRecord(rec)
	if !ok {
		t.Fatal("expected course")
	}
	if course.ID != "c1" || course.Title != "X" || course.Price != 9.99 {
		t.Fatalf("unexpected course: %+v", course)
	}
}

func TestCourseFromRecordFlattenedVariant(t *testing.T) {
	rec, ok := recordFromBag(map[string]any{
		"id":    "c2",
		"title": "Flat",
		"price": 12.5,
	})
	if !ok {
		t.Fatal("expected record")
	}
	course, _ := CourseFromRecord(rec)
	if course.ID != "c2" || course.Title != "Flat" || course.Price != 12.5 {
		t.Fatalf("unexpected course: %+v", course)
	}
}

func TestRecordFromBagInnerID(t *testing.T) {
	rec, ok := recordFromBag(map[string]any{
		"data": map[string]any{"id": "c3", "title": "Inner"},
	})
	if !ok || rec.ID != "c3" {
		t.Fatalf("expected inner id, got %+v ok=%v", rec, ok)
	}
}

func TestRecordFromBagNoIDAnywhere(t *testing.T) {
	if _, ok := recordFromBag(map[string]any{"title": "orphan"}); ok {
		t.Fatal("record with no id must be dropped")
	}
}

func TestCourseStatusDefaultsPublishedOnRead(t *testing.T) {
	rec := Record{ID: "c1", Data: map[string]any{"title": "X"}}
	course, _ := CourseFromRecord(rec)
	if course.Status != domain.StatusPublished {
		t.Fatalf("absent status should read as published, got %q", course.Status)
	}
}

func TestCourseFieldsDefaultsDraftOnWrite(t *testing.T) {
	fields := CourseFields(domain.Course{OwnerID: "m1", Title: "X"})
	if fields["status"] != string(domain.StatusDraft) {
		t.Fatalf("absent status should write as draft, got %v", fields["status"])
	}
}

func TestCourseFieldsPriceCentsBoundary(t *testing.T) {
	fields := CourseFields(domain.Course{Title: "X", Price: 19.99})
	if fields["priceCents"] != int64(1999) {
		t.Fatalf("expected 1999 cents, got %v", fields["priceCents"])
	}
}

func TestCourseFromRecordPriceCentsWinsOverPrice(t *testing.T) {
	rec := Record{ID: "c1", Data: map[string]any{"priceCents": float64(500), "price": 99.0}}
	course, _ := CourseFromRecord(rec)
	if course.Price != 5 {
		t.Fatalf("priceCents should win, got %v", course.Price)
	}
}

func TestCourseFromRecordDerivesThumbnail(t *testing.T) {
	rec := Record{ID: "c9", Data: map[string]any{"title": "X"}}
	course, _ := CourseFromRecord(rec)
	if course.ThumbnailURL != domain.PlaceholderThumbnail("c9") {
		t.Fatalf("expected derived thumbnail, got %q", course.ThumbnailURL)
	}
}

func TestCourseFromRecordParsesTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{ID: "c1", Data: map[string]any{
		"title":     "X",
		"createdAt": created.Format(time.RFC3339),
		"updatedAt": float64(created.UnixMilli()),
	}}
	course, _ := CourseFromRecord(rec)
	if !course.CreatedAt.Equal(created) {
		t.Fatalf("createdAt mismatch: %v", course.CreatedAt)
	}
	if !course.UpdatedAt.Equal(created) {
		t.Fatalf("updatedAt mismatch: %v", course.UpdatedAt)
	}
}

func TestLessonFromRecordRequiresCourseID(t *testing.T) {
	if _, ok := LessonFromRecord(Record{ID: "l1", Data: map[string]any{"title": "X"}}); ok {
		t.Fatal("lesson without courseId must be dropped")
	}
	lesson, ok := LessonFromRecord(Record{ID: "l1", Data: map[string]any{
		"courseId": "c1",
		"title":    "Intro",
		"order":    float64(2),
	}})
	if !ok || lesson.CourseID != "c1" || lesson.Order != 2 {
		t.Fatalf("unexpected lesson: %+v ok=%v", lesson, ok)
	}
}
