package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/migrations"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/db"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

// These tests need a disposable PostgreSQL database in DATABASE_URL.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrations.NewMigrator(pool, migrations.Files(), zerolog.Nop()).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func newTestUser(t *testing.T, repo *UserRepository, name string, teach, learn []string) *models.User {
	t.Helper()
	u := &models.User{
		Email:         name + "-" + uuid.NewString()[:8] + "@example.com",
		Password:      "hash",
		DisplayName:   name,
		Location:      "Berlin",
		SkillsToTeach: teach,
		SkillsToLearn: learn,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepositoryIntegration(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	tag := "Go-" + uuid.NewString()[:8]
	alice := newTestUser(t, repo, "Alice", []string{tag}, []string{"Piano"})

	dup := &models.User{Email: alice.Email, Password: "x"}
	if err := repo.Create(ctx, dup); err != apperrors.ErrEmailAlreadyExists {
		t.Fatalf("duplicate email err = %v", err)
	}

	got, err := repo.FindByEmail(ctx, alice.Email)
	if err != nil || got.ID != alice.ID {
		t.Fatalf("FindByEmail = %+v, %v", got, err)
	}

	users, err := repo.List(ctx, UserFilter{Teach: tag})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].ID != alice.ID {
		t.Fatalf("List by teach = %+v", users)
	}

	if _, err := repo.FindByID(ctx, "not-a-uuid"); err != apperrors.ErrUserNotFound {
		t.Fatalf("FindByID invalid id err = %v", err)
	}
}

func TestExchangeAndThreadIntegration(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	exchanges := NewExchangeRepository(pool)
	messages := NewMessageRepository(pool)

	a := newTestUser(t, users, "Ana", []string{"Go"}, []string{"Piano"})
	b := newTestUser(t, users, "Ben", []string{"Piano"}, []string{"Go"})

	ex := &models.Exchange{
		RequesterID: a.ID, RequesterName: a.DisplayName,
		RecipientID: b.ID, RecipientName: b.DisplayName,
		SkillToTeach: "Go", SkillToLearn: "Piano",
		Status: domain.StatusPending, Message: "hi",
		Date: "2030-01-01", Time: "10:00", DurationMinutes: 30, Timezone: "UTC",
	}
	if err := exchanges.Create(ctx, ex); err != nil {
		t.Fatalf("create exchange: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, text := range []string{"first", "second"} {
		m := &models.Message{ExchangeID: ex.ID, Type: domain.MessageText, Text: text, SenderID: a.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := messages.Append(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	last, err := messages.Last(ctx, ex.ID)
	if err != nil || last == nil || last.Text != "second" {
		t.Fatalf("Last = %+v, %v", last, err)
	}

	ex.Status = domain.StatusAccepted
	if err := exchanges.UpdateStatus(ctx, ex); err != nil {
		t.Fatalf("update status: %v", err)
	}

	n, err := messages.DeleteByExchange(ctx, ex.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByExchange = %d, %v", n, err)
	}

	stored, err := exchanges.GetByID(ctx, ex.ID)
	if err != nil {
		t.Fatalf("get exchange: %v", err)
	}
	if stored.Status != domain.StatusAccepted || stored.Message != "hi" {
		t.Fatalf("exchange changed by thread clear: %+v", stored)
	}
}

func TestPostLikesAndCommentsIntegration(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	posts := NewPostRepository(pool)

	author := newTestUser(t, users, "Cleo", nil, nil)
	post := &models.Post{AuthorID: author.ID, AuthorName: author.DisplayName, Content: "hello"}
	if err := posts.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	liked, err := posts.ToggleLike(ctx, post.ID, author.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle = %v, %v", liked, err)
	}
	liked, err = posts.ToggleLike(ctx, post.ID, author.ID)
	if err != nil || liked {
		t.Fatalf("second toggle = %v, %v", liked, err)
	}

	c := models.Comment{ID: uuid.NewString(), UserID: author.ID, UserName: "Cleo", Text: "nice", CreatedAt: time.Now().UTC()}
	if err := posts.AddComment(ctx, post.ID, c); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if err := posts.RemoveComment(ctx, post.ID, c.ID); err != nil {
		t.Fatalf("remove comment: %v", err)
	}
	if err := posts.RemoveComment(ctx, post.ID, c.ID); err != apperrors.ErrCommentNotFound {
		t.Fatalf("second remove err = %v", err)
	}

	got, err := posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if len(got.Likes) != 0 || len(got.Comments) != 0 {
		t.Fatalf("post = %+v", got)
	}
}

func TestMongoMessageRepositoryIntegration(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	client, err := db.NewMongoClient(ctx, uri, "skillswap_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() {
		_ = client.MessagesCollection().Drop(context.Background())
		_ = client.Close(context.Background())
	}()
	if err := client.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes: %v", err)
	}

	repo := NewMongoMessageRepository(client.MessagesCollection())
	exchangeID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, text := range []string{"one", "two", "three"} {
		m := &models.Message{ExchangeID: exchangeID, Type: domain.MessageText, Text: text,
			CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := repo.Append(ctx, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.ListByExchange(ctx, exchangeID)
	if err != nil || len(list) != 3 || list[0].Text != "one" {
		t.Fatalf("ListByExchange = %+v, %v", list, err)
	}
	last, err := repo.Last(ctx, exchangeID)
	if err != nil || last.Text != "three" {
		t.Fatalf("Last = %+v, %v", last, err)
	}
	n, err := repo.DeleteByExchange(ctx, exchangeID)
	if err != nil || n != 3 {
		t.Fatalf("DeleteByExchange = %d, %v", n, err)
	}
	if last, _ := repo.Last(ctx, exchangeID); last != nil {
		t.Fatalf("thread not empty after clear: %+v", last)
	}
}
