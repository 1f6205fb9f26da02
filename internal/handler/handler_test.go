package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/skillpath/internal/config"
	"github.com/noah-isme/skillpath/internal/handler"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/router"
	"github.com/noah-isme/skillpath/internal/service"
	"github.com/noah-isme/skillpath/internal/session"
	"github.com/noah-isme/skillpath/internal/store"
)

const testSecret = "handler-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

type testServer struct {
	app       *fiber.App
	workspace *store.Workspace
	session   *session.Context
}

func newTestServer(t *testing.T, sess *session.Context, repos store.Repositories) *testServer {
	t.Helper()

	workspace := store.NewWorkspace(repos, store.Options{
		Gate:          sess,
		Logger:        zerolog.Nop(),
		RemoteCascade: true,
	})
	workspace.Bind(sess)
	t.Cleanup(workspace.Close)
	require.NoError(t, workspace.Refresh(context.Background()))

	planner := service.NewPlannerService(workspace, zerolog.Nop())
	app := fiber.New()
	router.Register(app, config.Config{AppName: "skillpath-test", AppEnv: "test"}, router.Dependencies{
		Mode:            sess.Mode(),
		SessionHandler:  handler.NewSessionHandler(sess, zerolog.Nop()),
		GoalHandler:     handler.NewGoalHandler(workspace, planner, zerolog.Nop()),
		SkillHandler:    handler.NewSkillHandler(workspace, zerolog.Nop()),
		TopicHandler:    handler.NewTopicHandler(workspace, zerolog.Nop()),
		ContentHandler:  handler.NewContentHandler(workspace, zerolog.Nop()),
		NoteHandler:     handler.NewNoteHandler(workspace, zerolog.Nop()),
		TemplateHandler: handler.NewTemplateHandler(),
	})

	return &testServer{app: app, workspace: workspace, session: sess}
}

func newDemoServer(t *testing.T) *testServer {
	t.Helper()
	sess := session.New(session.Options{Mode: session.ModeDemo, Logger: zerolog.Nop()})
	return newTestServer(t, sess, store.Repositories{})
}

func newConfiguredServer(t *testing.T) (*testServer, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sess := session.New(session.Options{
		Mode:     session.ModeConfigured,
		Verifier: session.NewHMACVerifier(testSecret),
		Logger:   zerolog.Nop(),
	})
	return newTestServer(t, sess, store.NewRepositories(db)), db
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type goalList struct {
	Items []struct {
		ID                   string `json:"id"`
		Title                string `json:"title"`
		SkillsCount          int    `json:"skills_count"`
		CompletedSkillsCount int    `json:"completed_skills_count"`
	} `json:"items"`
	Filter string `json:"filter"`
	Error  string `json:"error"`
}

type itemList[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func TestHealthReportsPersistenceMode(t *testing.T) {
	server := newDemoServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := server.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "demo", resp.Header.Get("X-Persistence-Mode"))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	health := decodeData[handler.HealthResponse](t, env)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "demo", health.Mode)
}

func TestGoalListServesDemoSeed(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodGet, "/api/v1/goals", nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[goalList](t, env)
	require.Len(t, list.Items, 2)
	require.Equal(t, "all", list.Filter)

	for _, goal := range list.Items {
		if goal.ID == "1" {
			require.Equal(t, 3, goal.SkillsCount)
			require.Equal(t, 1, goal.CompletedSkillsCount)
		}
	}

	status, env = server.do(t, http.MethodGet, "/api/v1/goals?filter=completed", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decodeData[goalList](t, env).Items)
}

func TestGoalCreateExpandsTemplate(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"title":       "Frontend Developer",
		"target_date": "2030-01-31",
	})
	require.Equal(t, http.StatusCreated, status)

	plan := decodeData[service.GoalPlan](t, env)
	require.Equal(t, "frontend developer", plan.Template)
	require.Len(t, plan.Skills, 4)
	for i, skill := range plan.Skills {
		require.Equal(t, i, skill.OrderInRoadmap)
		require.Equal(t, models.SkillNotStarted, skill.Status)
	}

	status, env = server.do(t, http.MethodGet, "/api/v1/goals/"+plan.Goal.ID, nil)
	require.Equal(t, http.StatusOK, status)
	overview := decodeData[service.GoalOverview](t, env)
	require.Equal(t, 4, overview.Goal.SkillsCount)
	require.Equal(t, 0, overview.OverallProgress)
	require.False(t, overview.IsOverdue)
}

func TestGoalCreateWithoutTemplate(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"expand_template": false,
	})
	require.Equal(t, http.StatusCreated, status)
	goal := decodeData[models.Goal](t, env)
	require.Equal(t, "New Goal", goal.Title)
	require.Equal(t, models.DemoOwnerID, goal.OwnerID)
	require.Len(t, server.workspace.Skills().Items(), 3)
}

func TestGoalCreateRejectsMalformedDate(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"title":       "Learn Go",
		"target_date": "31/12/2030",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.False(t, env.Success)
}

func TestGoalAchieveAndDelete(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/goals/2/achieve", nil)
	require.Equal(t, http.StatusOK, status)
	achieved := decodeData[models.Goal](t, env)
	require.True(t, achieved.IsAchieved)
	require.NotNil(t, achieved.AchievementNotes)
	require.Equal(t, service.DefaultAchievementNotes, *achieved.AchievementNotes)

	status, _ = server.do(t, http.MethodDelete, "/api/v1/goals/1", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, server.workspace.Skills().Items())

	status, _ = server.do(t, http.MethodGet, "/api/v1/goals/1", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSkillStatusDrivesProgress(t *testing.T) {
	server := newDemoServer(t)

	status, _ := server.do(t, http.MethodPatch, "/api/v1/skills/1", map[string]interface{}{"status": "done"})
	require.Equal(t, http.StatusOK, status)

	status, env := server.do(t, http.MethodGet, "/api/v1/skills/1/progress", nil)
	require.Equal(t, http.StatusOK, status)
	progress := decodeData[map[string]interface{}](t, env)
	require.EqualValues(t, 100, progress["progress"])
	require.Equal(t, "Completed", progress["label"])

	status, _ = server.do(t, http.MethodPatch, "/api/v1/skills/1", map[string]interface{}{"status": "finished"})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = server.do(t, http.MethodGet, "/api/v1/skills/missing/progress", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSkillPositionConflict(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPatch, "/api/v1/skills/2", map[string]interface{}{"order_in_roadmap": 0})
	require.Equal(t, http.StatusConflict, status)
	require.Contains(t, env.Message, "position already taken")

	status, env = server.do(t, http.MethodPatch, "/api/v1/skills/2", map[string]interface{}{"order_in_roadmap": 7})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 7, decodeData[models.Skill](t, env).OrderInRoadmap)
}

func TestSkillListFilters(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodGet, "/api/v1/skills?status=done", nil)
	require.Equal(t, http.StatusOK, status)
	done := decodeData[itemList[models.Skill]](t, env)
	require.Equal(t, 1, done.Total)
	require.Equal(t, "3", done.Items[0].ID)

	status, env = server.do(t, http.MethodGet, "/api/v1/skills?search=react", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, decodeData[itemList[models.Skill]](t, env).Total)
}

func TestDemoTopicsSurviveListing(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/skills/1/topics", map[string]interface{}{"title": "useEffect"})
	require.Equal(t, http.StatusCreated, status)
	first := decodeData[models.Topic](t, env)

	status, env = server.do(t, http.MethodPost, "/api/v1/skills/1/topics", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, status)
	second := decodeData[models.Topic](t, env)
	require.Equal(t, "New Topic", second.Title)

	status, env = server.do(t, http.MethodGet, "/api/v1/skills/1/topics", nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[itemList[models.Topic]](t, env)
	require.Equal(t, 2, list.Total)
	require.Equal(t, 0, list.Items[0].OrderIndex)
	require.Equal(t, 1, list.Items[1].OrderIndex)

	status, env = server.do(t, http.MethodPut, "/api/v1/skills/1/topics/order", map[string]interface{}{
		"ids": []string{second.ID, first.ID},
	})
	require.Equal(t, http.StatusOK, status)
	reordered := decodeData[[]models.Topic](t, env)
	require.Equal(t, second.ID, reordered[0].ID)
	require.Equal(t, 0, reordered[0].OrderIndex)

	status, _ = server.do(t, http.MethodDelete, "/api/v1/skills/1/topics/"+first.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = server.do(t, http.MethodGet, "/api/v1/skills/1/topics", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, decodeData[itemList[models.Topic]](t, env).Total)
}

func TestReorderRequiresIDs(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPut, "/api/v1/skills/1/topics/order", map[string]interface{}{"ids": []string{}})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "validation failed", env.Message)
}

func TestContentDefaultsAndValidation(t *testing.T) {
	server := newDemoServer(t)

	status, _ := server.do(t, http.MethodPost, "/api/v1/skills/1/content", map[string]interface{}{"type": "video"})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, env := server.do(t, http.MethodPost, "/api/v1/skills/1/content", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, status)
	block := decodeData[models.SkillContent](t, env)
	require.Equal(t, "New Content", block.Title)
	require.Equal(t, models.ContentText, block.Type)

	status, env = server.do(t, http.MethodPatch, "/api/v1/skills/1/content/"+block.ID, map[string]interface{}{"type": "topic"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, models.ContentTopic, decodeData[models.SkillContent](t, env).Type)
}

func TestNotesAreSanitized(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodPost, "/api/v1/topics/topic-1/notes", map[string]interface{}{
		"content": "<script>alert(1)</script>remember <b>closures</b>",
	})
	require.Equal(t, http.StatusCreated, status)
	note := decodeData[models.Note](t, env)
	require.NotContains(t, note.Content, "script")
	require.Contains(t, note.Content, "closures")

	status, env = server.do(t, http.MethodPatch, "/api/v1/topics/topic-1/notes/"+note.ID, map[string]interface{}{"content": "use <i>defer</i> <img src=x onerror=alert(1)>"})
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[models.Note](t, env)
	require.Contains(t, updated.Content, "defer")
	require.NotContains(t, updated.Content, "onerror")

	status, _ = server.do(t, http.MethodDelete, "/api/v1/topics/topic-1/notes/"+note.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = server.do(t, http.MethodDelete, "/api/v1/topics/topic-1/notes/"+note.ID, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestTemplatePreview(t *testing.T) {
	server := newDemoServer(t)

	status, env := server.do(t, http.MethodGet, "/api/v1/templates?title=Senior%20Software%20Engineer", nil)
	require.Equal(t, http.StatusOK, status)
	preview := decodeData[map[string]interface{}](t, env)
	require.Equal(t, "senior software engineer", preview["template"])
	require.NotEmpty(t, preview["skills"])
}

func TestDemoSessionRejectsSignIn(t *testing.T) {
	server := newDemoServer(t)

	status, _ := server.do(t, http.MethodPost, "/api/v1/session", map[string]interface{}{"access_token": "anything"})
	require.Equal(t, http.StatusConflict, status)

	status, env := server.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, status)
	state := decodeData[session.State](t, env)
	require.False(t, state.IsConfigured)
	require.False(t, state.IsAuthenticated)
}

func TestSignedOutMutationsRequireSignIn(t *testing.T) {
	server, _ := newConfiguredServer(t)

	status, env := server.do(t, http.MethodGet, "/api/v1/goals", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decodeData[goalList](t, env).Items)

	status, _ = server.do(t, http.MethodPost, "/api/v1/goals", map[string]interface{}{"title": "Learn Go", "expand_template": false})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = server.do(t, http.MethodPost, "/api/v1/skills/1/topics", map[string]interface{}{"title": "Channels"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = server.do(t, http.MethodPost, "/api/v1/session", map[string]interface{}{"access_token": "not-a-token"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestSignInLoadsOwnerRows(t *testing.T) {
	server, db := newConfiguredServer(t)

	now := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Goal{ID: "goal-mine", OwnerID: "user-1", Title: "Learn Go", CreatedAt: now, UpdatedAt: now}).Error)
	require.NoError(t, db.Create(&models.Goal{ID: "goal-other", OwnerID: "user-2", Title: "Learn Rust", CreatedAt: now, UpdatedAt: now}).Error)

	status, env := server.do(t, http.MethodPost, "/api/v1/session", map[string]interface{}{"access_token": signToken(t, "user-1")})
	require.Equal(t, http.StatusOK, status)
	state := decodeData[session.State](t, env)
	require.True(t, state.IsAuthenticated)
	require.Equal(t, "user-1", state.UserID)

	status, env = server.do(t, http.MethodGet, "/api/v1/goals", nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[goalList](t, env)
	require.Len(t, list.Items, 1)
	require.Equal(t, "goal-mine", list.Items[0].ID)

	status, env = server.do(t, http.MethodPost, "/api/v1/skills", map[string]interface{}{
		"goal_id": "goal-mine",
		"title":   "Concurrency",
	})
	require.Equal(t, http.StatusCreated, status)
	skill := decodeData[models.Skill](t, env)
	require.Equal(t, "user-1", skill.OwnerID)
	require.Equal(t, 0, skill.OrderInRoadmap)

	var stored models.Skill
	require.NoError(t, db.First(&stored, "id = ?", skill.ID).Error)
	require.Equal(t, "Concurrency", stored.Title)

	status, _ = server.do(t, http.MethodDelete, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = server.do(t, http.MethodGet, "/api/v1/goals", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decodeData[goalList](t, env).Items)
}
