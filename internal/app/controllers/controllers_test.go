package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for JWTAuth.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextEmail, userID+"@example.com")
		c.Next()
	}
}

func do(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if !envelope.Success {
		t.Fatalf("unsuccessful response: %s", w.Body.String())
	}
	return envelope.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == nil {
		t.Fatalf("decode error %q: %v", w.Body.String(), err)
	}
	return resp.Error.Code
}

type fakeExchanges struct {
	services.ExchangeService
	lastUser    string
	lastRequest *dto.CreateExchangeRequest
	lastFilter  *dto.ExchangeFilterRequest
	lastSearch  string
	err         error
}

func (f *fakeExchanges) Request(_ context.Context, userID string, req *dto.CreateExchangeRequest) (*dto.ExchangeResponse, error) {
	f.lastUser, f.lastRequest = userID, req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExchangeResponse{ID: "ex-1"}, nil
}

func (f *fakeExchanges) Accept(_ context.Context, userID, id string) (*dto.ExchangeResponse, error) {
	f.lastUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExchangeResponse{ID: id}, nil
}

func (f *fakeExchanges) List(_ context.Context, userID string, filter *dto.ExchangeFilterRequest) (*dto.ExchangeListResponse, error) {
	f.lastUser, f.lastFilter = userID, filter
	return &dto.ExchangeListResponse{}, nil
}

func (f *fakeExchanges) Sessions(_ context.Context, userID, search string) (*dto.SessionListResponse, error) {
	f.lastUser, f.lastSearch = userID, search
	return &dto.SessionListResponse{}, nil
}

func TestExchangeController(t *testing.T) {
	svc := &fakeExchanges{}
	c := NewExchangeController(svc, zerolog.Nop())

	router := gin.New()
	router.POST("/anonymous", c.CreateExchange)
	authed := router.Group("", asUser("u-1"))
	authed.POST("/exchanges", c.CreateExchange)
	authed.GET("/exchanges", c.ListExchanges)
	authed.POST("/exchanges/:id/accept", c.AcceptExchange)
	authed.GET("/sessions", c.ListSessions)

	if w := do(router, http.MethodPost, "/anonymous", dto.CreateExchangeRequest{RecipientID: "u-2"}); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", w.Code)
	}

	w := do(router, http.MethodPost, "/exchanges", dto.CreateExchangeRequest{RecipientID: "u-2", Message: "hi", Date: "2030-05-01", Time: "18:30"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode[dto.ExchangeResponse](t, w); got.ID != "ex-1" {
		t.Errorf("created = %+v", got)
	}
	if svc.lastUser != "u-1" || svc.lastRequest.RecipientID != "u-2" {
		t.Errorf("service got user %q req %+v", svc.lastUser, svc.lastRequest)
	}

	if w := do(router, http.MethodPost, "/exchanges", `{"message":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed status = %d", w.Code)
	}
	if w := do(router, http.MethodPost, "/exchanges", dto.CreateExchangeRequest{Message: "hi"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing recipient status = %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/exchanges?bucket=upcoming&search=piano", nil); w.Code != http.StatusOK {
		t.Errorf("list status = %d", w.Code)
	} else if svc.lastFilter.Bucket != "upcoming" || svc.lastFilter.Search != "piano" {
		t.Errorf("filter = %+v", svc.lastFilter)
	}
	if w := do(router, http.MethodGet, "/exchanges?bucket=someday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad bucket status = %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/sessions?search=Bob", nil); w.Code != http.StatusOK || svc.lastSearch != "Bob" {
		t.Errorf("sessions status = %d search = %q", w.Code, svc.lastSearch)
	}

	svc.err = apperrors.ErrInvalidTransition
	w = do(router, http.MethodPost, "/exchanges/ex-1/accept", nil)
	if w.Code != http.StatusConflict || errorCode(t, w) != dto.ErrorCodeInvalidTransition {
		t.Errorf("accept twice = %d %s", w.Code, w.Body.String())
	}
}

type fakeThreads struct {
	services.ThreadService
	sent []string
	err  error
}

func (f *fakeThreads) List(_ context.Context, _, _ string) (*dto.ThreadResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ThreadResponse{}, nil
}

func (f *fakeThreads) SendText(_ context.Context, _, _, text string) (*dto.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, text)
	return &dto.MessageResponse{Text: text}, nil
}

func (f *fakeThreads) Clear(_ context.Context, _, _ string) (*dto.ClearThreadResponse, error) {
	return &dto.ClearThreadResponse{Deleted: int64(len(f.sent))}, nil
}

func TestThreadController(t *testing.T) {
	svc := &fakeThreads{}
	c := NewThreadController(svc, zerolog.Nop())

	router := gin.New()
	authed := router.Group("", asUser("u-1"))
	authed.POST("/exchanges/:id/messages", c.SendMessage)
	authed.DELETE("/exchanges/:id/messages", c.ClearMessages)
	authed.GET("/exchanges/:id/messages", c.GetMessages)

	w := do(router, http.MethodPost, "/exchanges/ex-1/messages", dto.SendMessageRequest{Text: "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode[dto.MessageResponse](t, w); got.Text != "hello" {
		t.Errorf("message = %+v", got)
	}

	w = do(router, http.MethodDelete, "/exchanges/ex-1/messages", nil)
	if got := decode[dto.ClearThreadResponse](t, w); got.Deleted != 1 {
		t.Errorf("cleared = %+v", got)
	}

	svc.err = apperrors.ErrPermissionDenied
	if w := do(router, http.MethodGet, "/exchanges/ex-1/messages", nil); w.Code != http.StatusForbidden {
		t.Errorf("outsider status = %d", w.Code)
	}
}

type fakeCommunity struct {
	services.CommunityService
	page, size int
	filter     *dto.PostFilterRequest
	deleted    [2]string
}

func (f *fakeCommunity) List(_ context.Context, _ string, filter *dto.PostFilterRequest, page, size int) (*dto.PostListResponse, error) {
	f.filter, f.page, f.size = filter, page, size
	return &dto.PostListResponse{Posts: []dto.PostResponse{}}, nil
}

func (f *fakeCommunity) DeleteComment(_ context.Context, _, postID, commentID string) error {
	f.deleted = [2]string{postID, commentID}
	return nil
}

func (f *fakeCommunity) Delete(_ context.Context, _, _ string) error {
	return apperrors.NewForbiddenError("Only the author can delete this post")
}

func TestCommunityController(t *testing.T) {
	svc := &fakeCommunity{}
	c := NewCommunityController(svc, zerolog.Nop())

	router := gin.New()
	authed := router.Group("", asUser("u-1"))
	authed.GET("/posts", c.ListPosts)
	authed.DELETE("/posts/:id", c.DeletePost)
	authed.DELETE("/posts/:id/comments/:commentId", c.DeleteComment)

	if w := do(router, http.MethodGet, "/posts?page=2&size=5&sort=mostLiked&category=Music", nil); w.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", w.Code, w.Body.String())
	}
	if svc.page != 2 || svc.size != 5 || svc.filter.Sort != "mostLiked" || svc.filter.Category != "Music" {
		t.Errorf("list args page=%d size=%d filter=%+v", svc.page, svc.size, svc.filter)
	}
	if w := do(router, http.MethodGet, "/posts?sort=random", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad sort status = %d", w.Code)
	}

	if w := do(router, http.MethodDelete, "/posts/p-1/comments/c-9", nil); w.Code != http.StatusOK || svc.deleted != [2]string{"p-1", "c-9"} {
		t.Errorf("delete comment status = %d args = %v", w.Code, svc.deleted)
	}
	if w := do(router, http.MethodDelete, "/posts/p-1", nil); w.Code != http.StatusForbidden {
		t.Errorf("delete foreign post status = %d", w.Code)
	}
}

type fakeNotifications struct {
	services.NotificationService
	filter *dto.NotificationFilterRequest
}

func (f *fakeNotifications) List(_ context.Context, _ string, filter *dto.NotificationFilterRequest) (*dto.NotificationListResponse, error) {
	f.filter = filter
	return &dto.NotificationListResponse{UnreadCount: 3}, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, _, id string) error {
	if id == "missing" {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func TestNotificationController(t *testing.T) {
	svc := &fakeNotifications{}
	c := NewNotificationController(svc, zerolog.Nop())

	router := gin.New()
	authed := router.Group("", asUser("u-1"))
	authed.GET("/notifications", c.ListNotifications)
	authed.PUT("/notifications/:id/read", c.MarkRead)

	w := do(router, http.MethodGet, "/notifications?unread=true&limit=5", nil)
	if got := decode[dto.NotificationListResponse](t, w); got.UnreadCount != 3 {
		t.Errorf("list = %+v", got)
	}
	if !svc.filter.UnreadOnly || svc.filter.Limit != 5 {
		t.Errorf("filter = %+v", svc.filter)
	}
	if w := do(router, http.MethodGet, "/notifications?limit=1000", nil); w.Code != http.StatusBadRequest {
		t.Errorf("limit too large status = %d", w.Code)
	}

	if w := do(router, http.MethodPut, "/notifications/n-1/read", nil); w.Code != http.StatusOK {
		t.Errorf("mark read status = %d", w.Code)
	}
	if w := do(router, http.MethodPut, "/notifications/missing/read", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", w.Code)
	}
}

func TestStreamMessagesRejectsOutsiderBeforeUpgrade(t *testing.T) {
	threads := &fakeThreads{err: apperrors.ErrPermissionDenied}
	c := NewLiveController(nil, nil, threads, nil, nil, nil, nil, zerolog.Nop())

	router := gin.New()
	router.GET("/ws/exchanges/:id/messages", asUser("u-3"), c.StreamMessages)

	w := do(router, http.MethodGet, "/ws/exchanges/ex-1/messages", nil)
	if w.Code != http.StatusForbidden || errorCode(t, w) != dto.ErrorCodeForbidden {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestStreamMessagesTextFramesShareWriteLimit(t *testing.T) {
	threads := &fakeThreads{}
	limiter := middleware.NewLimiterStore(1, 2, 0)
	t.Cleanup(limiter.Stop)
	c := NewLiveController(nil, nil, threads, nil, nil, nil, limiter, zerolog.Nop())

	send := c.sendText("ex-1")
	for i := 0; i < 2; i++ {
		if err := send(context.Background(), "u-1", "hi"); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	err := send(context.Background(), "u-1", "one too many")
	if !errors.Is(err, apperrors.ErrTooManyRequests) || apperrors.UserMessage(err) == "" {
		t.Fatalf("over burst err = %v", err)
	}
	if len(threads.sent) != 2 {
		t.Errorf("sent = %v, want 2 messages", threads.sent)
	}

	if err := send(context.Background(), "u-2", "hello"); err != nil {
		t.Errorf("other user limited: %v", err)
	}
}
