package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"coursedeck/internal/domain"
	"coursedeck/internal/membership"
	"coursedeck/internal/membertoken"
	"coursedeck/internal/ratelimit"
	"coursedeck/internal/seed"
	"coursedeck/internal/session"
	"coursedeck/internal/tablestore"
	"coursedeck/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Membership    *membership.Client
	Tables        *tablestore.Client
	TokenVerifier *membertoken.Verifier
	Sessions      session.Cache
	CoursesTable  string
	LessonsTable  string

	RedisAddr     string
	RedisPassword string

	TrustedProxyCIDRs []string

	LoginRateLimitPerMinute  int
	SignupRateLimitPerMinute int
	VerifyRateLimitPerMinute int
	SeedRateLimitPerMinute   int
}

// Server exposes the course-catalog HTTP endpoints.
type Server struct {
	membership    *membership.Client
	tables        *tablestore.Client
	tokenVerifier *membertoken.Verifier
	sessions      session.Cache
	seeder        *seed.Seeder
	coursesTable  string
	lessonsTable  string
	mux           *http.ServeMux
	trustedProxy  *util.TrustedProxies
	loginLimiter  *ratelimit.FixedWindowLimiter
	signupLimiter *ratelimit.FixedWindowLimiter
	verifyLimiter *ratelimit.FixedWindowLimiter
	seedLimiter   *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.Membership == nil {
		return nil, errors.New("server requires a membership client")
	}
	if cfg.Tables == nil {
		return nil, errors.New("server requires a table store client")
	}
	coursesTable := strings.TrimSpace(cfg.CoursesTable)
	if coursesTable == "" {
		coursesTable = "courses"
	}
	lessonsTable := strings.TrimSpace(cfg.LessonsTable)
	if lessonsTable == "" {
		lessonsTable = "lessons"
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	verifyLimit := cfg.VerifyRateLimitPerMinute
	if verifyLimit <= 0 {
		verifyLimit = 30
	}
	seedLimit := cfg.SeedRateLimitPerMinute
	if seedLimit <= 0 {
		seedLimit = 5
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "coursedeck:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	verifyLimiter, err := newLimiter("verify", verifyLimit)
	if err != nil {
		return nil, err
	}
	seedLimiter, err := newLimiter("seed", seedLimit)
	if err != nil {
		return nil, err
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = session.NewMemoryCache()
	}

	s := &Server{
		membership:    cfg.Membership,
		tables:        cfg.Tables,
		tokenVerifier: cfg.TokenVerifier,
		sessions:      sessions,
		seeder:        seed.New(cfg.Tables, coursesTable),
		coursesTable:  coursesTable,
		lessonsTable:  lessonsTable,
		mux:           http.NewServeMux(),
		trustedProxy:  trusted,
		loginLimiter:  loginLimiter,
		signupLimiter: signupLimiter,
		verifyLimiter: verifyLimiter,
		seedLimiter:   seedLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth bridge
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/api/auth/verify-token", s.handleVerifyToken)

	// catalog
	s.mux.HandleFunc("/api/courses", s.handleCourses)
	s.mux.HandleFunc("/api/courses/", s.handleCourseByID)
	s.mux.HandleFunc("/api/lessons", s.handleLessons)
	s.mux.HandleFunc("/api/migrate", s.handleMigrate)
	s.mux.HandleFunc("/api/seed-courses", s.handleSeedCourses)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorize resolves the caller's member identity from the bearer token.
// The optional local JWKS check runs first so obviously-forged tokens never
// reach the membership platform.
func (s *Server) authorize(r *http.Request) (domain.Member, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.Member{}, false
	}
	if s.tokenVerifier != nil {
		if _, err := s.tokenVerifier.VerifySubject(token); err != nil {
			s.audit(r, "catalog.token.verify", "fail", "reason", "invalid_signature_or_claims")
			return domain.Member{}, false
		}
	}
	member, err := s.membership.VerifyToken(token)
	if err != nil {
		s.audit(r, "catalog.token.verify", "fail", "reason", "remote_verify_failed")
		return domain.Member{}, false
	}
	return member, true
}

// auth handlers

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "catalog.login", "rate_limited")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	raw, err := s.membership.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "catalog.login", "fail", "reason", err.Error())
		writeMembershipError(w, err)
		return
	}
	s.finishAuth(w, r, "catalog.login", raw)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "catalog.signup", "rate_limited")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	raw, err := s.membership.SignUp(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		s.audit(r, "catalog.signup", "fail", "reason", err.Error())
		writeMembershipError(w, err)
		return
	}
	s.finishAuth(w, r, "catalog.signup", raw)
}

// finishAuth resolves a token out of the platform's auth response, refreshes
// the session cache and answers with the token and authoritative member.
func (s *Server) finishAuth(w http.ResponseWriter, r *http.Request, event string, raw map[string]any) {
	token, ok := s.membership.ResolveTokenWithFallback(raw)
	if !ok {
		// No token anywhere in the response means unauthenticated, not a
		// server fault.
		s.audit(r, event, "fail", "reason", "no_token_in_response")
		writeError(w, http.StatusUnauthorized, "authentication did not produce a token")
		return
	}
	member, err := s.membership.VerifyToken(token)
	if err != nil {
		s.audit(r, event, "fail", "reason", "verify_after_auth_failed")
		writeMembershipError(w, err)
		return
	}
	if err := s.sessions.Put(session.Session{Token: token, Member: member}); err != nil {
		util.LoggerFromContext(r.Context()).Warn("session cache write failed", "err", err)
	}
	s.audit(r, event, "success", "member_id", member.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, Member: member})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if token, ok := bearerToken(r); ok {
		if err := s.membership.Logout(token); err != nil {
			util.LoggerFromContext(r.Context()).Warn("remote logout failed", "err", err)
		}
	}
	if err := s.sessions.Clear(); err != nil {
		util.LoggerFromContext(r.Context()).Warn("session cache clear failed", "err", err)
	}
	s.audit(r, "catalog.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.verifyLimiter, "too many verification attempts") {
		return
	}
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": member})
}

// course handlers

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCourses(w, r)
	case http.MethodPost:
		s.handleCreateCourse(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	ownerFilter := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	member, authed := s.authorize(r)
	if ownerFilter != "" && !authed {
		// Filtering by owner requires proving you are an authenticated caller.
		writeError(w, http.StatusUnauthorized, "owner_id filter requires authentication")
		return
	}

	var filter map[string]string
	if ownerFilter != "" {
		filter = map[string]string{"ownerId": ownerFilter}
	}
	records, err := s.tables.ListRecords(s.coursesTable, filter)
	if err != nil {
		if errors.Is(err, tablestore.ErrTableNotFound) || errors.Is(err, tablestore.ErrUnexpectedShape) {
			// The catalog must stay usable even when the external schema
			// drifts; degrade to an empty list instead of failing hard.
			util.LoggerFromContext(r.Context()).Warn("course list degraded", "err", err)
			writeJSON(w, http.StatusOK, coursesResponse{
				Courses: []domain.Course{},
				Message: "course data is unavailable; run POST /api/migrate for setup instructions",
			})
			return
		}
		writeTableError(w, err)
		return
	}

	courses := make([]domain.Course, 0, len(records))
	for _, rec := range records {
		course, ok := tablestore.CourseFromRecord(rec)
		if !ok {
			continue
		}
		if !visibleTo(course, member, authed) {
			continue
		}
		courses = append(courses, course)
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, coursesResponse{Courses: courses})
}

// visibleTo implements the publication rule: published courses are public,
// everything else only exists for its owner.
func visibleTo(course domain.Course, member domain.Member, authed bool) bool {
	if course.Status == domain.StatusPublished {
		return true
	}
	return authed && course.OwnerID == member.ID
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req courseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	title := ""
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now().UTC()
	course := domain.Course{
		OwnerID:   member.ID,
		Title:     title,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyCourseRequest(&course, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.tables.CreateRecord(s.coursesTable, tablestore.CourseFields(course))
	if err != nil {
		writeTableError(w, err)
		return
	}
	created, ok := tablestore.CourseFromRecord(rec)
	if !ok {
		writeError(w, http.StatusBadGateway, "table store returned an unusable record")
		return
	}
	s.audit(r, "catalog.course.create", "success", "member_id", member.ID, "course_id", created.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"course": created})
}

func (s *Server) handleCourseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/courses/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetCourse(w, r, id)
	case http.MethodPut:
		s.handleUpdateCourse(w, r, id)
	case http.MethodDelete:
		s.handleDeleteCourse(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request, id string) {
	course, found, err := s.fetchCourse(id)
	if err != nil {
		writeTableError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if course.Status != domain.StatusPublished {
		member, authed := s.authorize(r)
		if !authed || course.OwnerID != member.ID {
			// Hidden and missing are deliberately indistinguishable.
			writeError(w, http.StatusNotFound, "course not found")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"course": course})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request, id string) {
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	course, found, err := s.fetchCourse(id)
	if err != nil {
		writeTableError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if course.OwnerID != member.ID {
		s.audit(r, "catalog.course.update", "fail", "member_id", member.ID, "course_id", id, "reason", "not_owner")
		writeError(w, http.StatusForbidden, "only the owner may modify this course")
		return
	}

	var req courseRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title cannot be empty")
		return
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if err := applyCourseRequest(&course, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	course.UpdatedAt = time.Now().UTC()

	rec, err := s.tables.UpdateRecord(s.coursesTable, id, tablestore.CourseFields(course))
	if err != nil {
		writeTableError(w, err)
		return
	}
	updated, ok := tablestore.CourseFromRecord(rec)
	if !ok {
		updated = course
		updated.ID = id
	}
	s.audit(r, "catalog.course.update", "success", "member_id", member.ID, "course_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"course": updated})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request, id string) {
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	course, found, err := s.fetchCourse(id)
	if err != nil {
		writeTableError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if course.OwnerID != member.ID {
		s.audit(r, "catalog.course.delete", "fail", "member_id", member.ID, "course_id", id, "reason", "not_owner")
		writeError(w, http.StatusForbidden, "only the owner may delete this course")
		return
	}
	if err := s.tables.DeleteRecord(s.coursesTable, id); err != nil {
		writeTableError(w, err)
		return
	}
	s.audit(r, "catalog.course.delete", "success", "member_id", member.ID, "course_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) fetchCourse(id string) (domain.Course, bool, error) {
	rec, found, err := s.tables.GetRecord(s.coursesTable, id)
	if err != nil || !found {
		return domain.Course{}, false, err
	}
	course, ok := tablestore.CourseFromRecord(rec)
	if !ok {
		return domain.Course{}, false, nil
	}
	return course, true, nil
}

// applyCourseRequest copies optional fields onto the course, validating
// values that cross the price/status/duration boundaries. Title handling
// stays with the callers because create and update treat it differently.
func applyCourseRequest(course *domain.Course, req courseRequest) error {
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.VideoLink != nil {
		course.VideoLink = *req.VideoLink
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return errors.New("price cannot be negative")
		}
		course.Price = *req.Price
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, ok := domain.ParseCourseStatus(*req.Status)
		if !ok {
			return errors.New("status must be draft, published or archived")
		}
		course.Status = status
	}
	if req.Duration != nil {
		if *req.Duration < 0 {
			return errors.New("duration cannot be negative")
		}
		course.Duration = *req.Duration
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Tags != nil {
		course.Tags = *req.Tags
	}
	return nil
}

// lesson handlers

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListLessons(w, r)
	case http.MethodPost:
		s.handleCreateLesson(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(r.URL.Query().Get("course_id"))
	var filter map[string]string
	if courseID != "" {
		filter = map[string]string{"courseId": courseID}
	}
	records, err := s.tables.ListRecords(s.lessonsTable, filter)
	if err != nil {
		if errors.Is(err, tablestore.ErrTableNotFound) || errors.Is(err, tablestore.ErrUnexpectedShape) {
			// Lessons are optional; a missing backing table is an empty
			// list, not an error.
			writeJSON(w, http.StatusOK, map[string]any{"lessons": []domain.Lesson{}})
			return
		}
		writeTableError(w, err)
		return
	}
	lessons := make([]domain.Lesson, 0, len(records))
	for _, rec := range records {
		if lesson, ok := tablestore.LessonFromRecord(rec); ok {
			lessons = append(lessons, lesson)
		}
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
	writeJSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req lessonRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CourseID) == "" {
		writeError(w, http.StatusBadRequest, "courseId is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	course, found, err := s.fetchCourse(req.CourseID)
	if err != nil {
		writeTableError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if course.OwnerID != member.ID {
		writeError(w, http.StatusForbidden, "only the course owner may add lessons")
		return
	}

	now := time.Now().UTC()
	lesson := domain.Lesson{
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Duration:    req.Duration,
		Order:       req.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec, err := s.tables.CreateRecord(s.lessonsTable, tablestore.LessonFields(lesson))
	if err != nil {
		writeTableError(w, err)
		return
	}
	created, ok := tablestore.LessonFromRecord(rec)
	if !ok {
		writeError(w, http.StatusBadGateway, "table store returned an unusable record")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"lesson": created})
}

// migration + seeding

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	missing := []string{}
	for _, table := range []string{s.coursesTable, s.lessonsTable} {
		exists, err := s.tables.TableExists(table)
		if err != nil {
			writeTableError(w, err)
			return
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	if len(missing) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	// Tables cannot be provisioned from here; hand back the schema so the
	// operator can create them on the platform.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "missing_tables",
		"missing":      missing,
		"schema":       tableSchemas(),
		"instructions": "create the listed tables on the data-table platform with the given fields, then re-run POST /api/migrate",
	})
}

func tableSchemas() map[string]any {
	return map[string]any{
		"courses": map[string]string{
			"ownerId":      "string",
			"title":        "string",
			"description":  "string",
			"videoLink":    "string",
			"thumbnailUrl": "string",
			"priceCents":   "integer",
			"status":       "string (draft|published|archived)",
			"duration":     "integer (minutes)",
			"category":     "string",
			"tags":         "string list",
			"createdAt":    "timestamp",
			"updatedAt":    "timestamp",
		},
		"lessons": map[string]string{
			"courseId":    "string",
			"title":       "string",
			"description": "string",
			"videoUrl":    "string",
			"duration":    "integer (minutes)",
			"order":       "integer",
			"createdAt":   "timestamp",
			"updatedAt":   "timestamp",
		},
	}
}

func (s *Server) handleSeedCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.seedLimiter, "too many seed requests") {
		return
	}
	member, ok := s.authorize(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	count := seed.DefaultCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = seed.ClampCount(parsed)
	}
	result := s.seeder.Run(member.ID, count)
	s.audit(r, "catalog.seed", "success", "member_id", member.ID, "created", result.Created, "errors", result.Errors)
	writeJSON(w, http.StatusOK, result)
}

// request/response shapes

type authRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type authResponse struct {
	Token  string        `json:"token"`
	Member domain.Member `json:"member"`
}

type coursesResponse struct {
	Courses []domain.Course `json:"courses"`
	Message string          `json:"message,omitempty"`
}

type courseRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	VideoLink    *string   `json:"videoLink"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	Price        *float64  `json:"price"`
	Status       *string   `json:"status"`
	Duration     *int      `json:"duration"`
	Category     *string   `json:"category"`
	Tags         *[]string `json:"tags"`
}

type lessonRequest struct {
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Duration    int    `json:"duration"`
	Order       int    `json:"order"`
}

// helpers

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMembershipError(w http.ResponseWriter, err error) {
	var apiErr *membership.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "membership platform unavailable")
}

func writeTableError(w http.ResponseWriter, err error) {
	var apiErr *tablestore.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "table store unavailable")
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxy),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxy)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

