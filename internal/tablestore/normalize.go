package tablestore

import (
	"strings"
	"time"

	"coursedeck/internal/domain"
)

// recordFromBag maps one raw item onto a Record. The platform returns both
// `{id, data: {...fields}}` and flattened variants depending on endpoint and
// version; a nested data object is flattened, and the identifier is taken
// from the outer level first, then the inner bag. Items with no id at either
// level are dropped rather than returned with an empty identifier.
func recordFromBag(bag map[string]any) (Record, bool) {
	if bag == nil {
		return Record{}, false
	}
	fields := bag
	if nested, ok := bag["data"].(map[string]any); ok {
		fields = nested
	}
	id, ok := stringField(bag, "id", "_id")
	if !ok {
		id, ok = stringField(fields, "id", "_id")
	}
	if !ok {
		return Record{}, false
	}
	return Record{ID: id, Data: fields}, true
}

// CourseFromRecord maps a normalized record onto the canonical Course shape.
// This is the read path: a record with no status field is assumed published,
// since externally seeded data predates the status column. The write path
// (CourseFields) defaults to draft instead; newly created unspecified-status
// courses stay private.
func CourseFromRecord(rec Record) (domain.Course, bool) {
	if rec.ID == "" {
		return domain.Course{}, false
	}
	c := domain.Course{
		ID:      rec.ID,
		OwnerID: stringOr(rec.Data, "", "ownerId", "owner_id"),
		Title:   stringOr(rec.Data, "", "title"),
	}
	c.Description = stringOr(rec.Data, "", "description")
	c.VideoLink = stringOr(rec.Data, "", "videoLink", "video_link")
	c.ThumbnailURL = stringOr(rec.Data, "", "thumbnailUrl", "thumbnail_url")
	if c.ThumbnailURL == "" {
		c.ThumbnailURL = domain.PlaceholderThumbnail(rec.ID)
	}

	if cents, ok := intField(rec.Data, "priceCents", "price_cents"); ok {
		c.Price = domain.PriceFromCents(cents)
	} else if price, ok := floatField(rec.Data, "price"); ok && price > 0 {
		c.Price = price
	}

	if status, ok := domain.ParseCourseStatus(stringOr(rec.Data, "", "status")); ok {
		c.Status = status
	} else {
		c.Status = domain.StatusPublished
	}

	if d, ok := intField(rec.Data, "duration"); ok && d > 0 {
		c.Duration = int(d)
	}
	c.Category = stringOr(rec.Data, "", "category")
	c.Tags = stringSlice(rec.Data, "tags")
	c.CreatedAt = timeField(rec.Data, "createdAt", "created_at")
	c.UpdatedAt = timeField(rec.Data, "updatedAt", "updated_at")
	return c, true
}

// CourseFields produces the field bag written to the table store for a
// course. Price crosses the boundary as integer cents; an empty status is
// written as draft.
func CourseFields(c domain.Course) map[string]any {
	status := c.Status
	if status == "" {
		status = domain.StatusDraft
	}
	fields := map[string]any{
		"ownerId":    c.OwnerID,
		"title":      c.Title,
		"priceCents": domain.CentsFromPrice(c.Price),
		"status":     string(status),
		"createdAt":  c.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":  c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if c.Description != "" {
		fields["description"] = c.Description
	}
	if c.VideoLink != "" {
		fields["videoLink"] = c.VideoLink
	}
	if c.ThumbnailURL != "" {
		fields["thumbnailUrl"] = c.ThumbnailURL
	}
	if c.Duration > 0 {
		fields["duration"] = c.Duration
	}
	if c.Category != "" {
		fields["category"] = c.Category
	}
	if len(c.Tags) > 0 {
		fields["tags"] = c.Tags
	}
	return fields
}

// LessonFromRecord maps a normalized record onto the Lesson shape.
func LessonFromRecord(rec Record) (domain.Lesson, bool) {
	if rec.ID == "" {
		return domain.Lesson{}, false
	}
	courseID := stringOr(rec.Data, "", "courseId", "course_id")
	if courseID == "" {
		return domain.Lesson{}, false
	}
	l := domain.Lesson{
		ID:          rec.ID,
		CourseID:    courseID,
		Title:       stringOr(rec.Data, "", "title"),
		Description: stringOr(rec.Data, "", "description"),
		VideoURL:    stringOr(rec.Data, "", "videoUrl", "video_url"),
	}
	if d, ok := intField(rec.Data, "duration"); ok && d > 0 {
		l.Duration = int(d)
	}
	if o, ok := intField(rec.Data, "order"); ok {
		l.Order = int(o)
	}
	l.CreatedAt = timeField(rec.Data, "createdAt", "created_at")
	l.UpdatedAt = timeField(rec.Data, "updatedAt", "updated_at")
	return l, true
}

// LessonFields produces the field bag written for a lesson.
func LessonFields(l domain.Lesson) map[string]any {
	fields := map[string]any{
		"courseId":  l.CourseID,
		"title":     l.Title,
		"order":     l.Order,
		"createdAt": l.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.Description != "" {
		fields["description"] = l.Description
	}
	if l.VideoURL != "" {
		fields["videoUrl"] = l.VideoURL
	}
	if l.Duration > 0 {
		fields["duration"] = l.Duration
	}
	return fields
}

func stringField(bag map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := bag[key]; ok {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

func stringOr(bag map[string]any, fallback string, keys ...string) string {
	if s, ok := stringField(bag, keys...); ok {
		return s
	}
	return fallback
}

func floatField(bag map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := bag[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

func intField(bag map[string]any, keys ...string) (int64, bool) {
	if f, ok := floatField(bag, keys...); ok {
		return int64(f), true
	}
	return 0, false
}

func stringSlice(bag map[string]any, key string) []string {
	raw, ok := bag[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func timeField(bag map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		switch v := bag[key].(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
				return ts
			}
		case float64:
			// Epoch milliseconds, seen from older table API versions.
			return time.UnixMilli(int64(v)).UTC()
		}
	}
	return time.Time{}
}
