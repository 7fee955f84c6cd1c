package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "Demo1234"

// Services are the operations the seeder drives. Demo data goes through the
// same validation and side effects as user traffic.
type Services struct {
	Auth interface {
		Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	}
	Profiles interface {
		Update(ctx context.Context, userID, email string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	}
	Exchanges interface {
		Request(ctx context.Context, requesterID string, req *dto.CreateExchangeRequest) (*dto.ExchangeResponse, error)
		Accept(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error)
	}
	Threads interface {
		SendText(ctx context.Context, userID, exchangeID, text string) (*dto.MessageResponse, error)
	}
	Community interface {
		Create(ctx context.Context, userID string, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	}
	Resources interface {
		Create(ctx context.Context, userID string, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	}
}

type demoUser struct {
	email    string
	name     string
	location string
	bio      string
	teach    []string
	learn    []string
}

var demoUsers = []demoUser{
	{"ada@skillswap.dev", "Ada", "Berlin", "Backend developer, wants to finally learn piano.", []string{"Go", "SQL"}, []string{"Piano"}},
	{"bruno@skillswap.dev", "Bruno", "Berlin", "Piano teacher curious about programming.", []string{"Piano", "Music Theory"}, []string{"Go"}},
	{"chiara@skillswap.dev", "Chiara", "Lyon", "Translator and weekend photographer.", []string{"French", "Photography"}, []string{"SQL", "Piano"}},
}

// Seeder creates demo accounts and content.
type Seeder struct {
	svc    Services
	logger zerolog.Logger
	now    func() time.Time
}

// NewSeeder creates a new Seeder
func NewSeeder(svc Services, logger zerolog.Logger) *Seeder {
	return &Seeder{svc: svc, logger: logger, now: time.Now}
}

// Run creates the demo data. It is a no-op once the first demo account exists.
func (s *Seeder) Run(ctx context.Context) error {
	s.logger.Info().Msg("Checking/Creating demo data...")

	ids := make([]string, 0, len(demoUsers))
	for i, u := range demoUsers {
		resp, err := s.svc.Auth.Register(ctx, &dto.RegisterRequest{
			Email:       u.email,
			Password:    DemoPassword,
			DisplayName: u.name,
		})
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			if i == 0 {
				s.logger.Info().Msg("Demo data already exists, skipping creation")
				return nil
			}
			return err
		}
		if err != nil {
			s.logger.Error().Err(err).Str("email", u.email).Msg("Error creating demo user")
			return err
		}

		if _, err := s.svc.Profiles.Update(ctx, resp.User.ID, u.email, &dto.UpdateProfileRequest{
			DisplayName:   u.name,
			Bio:           u.bio,
			Location:      u.location,
			SkillsToTeach: u.teach,
			SkillsToLearn: u.learn,
		}); err != nil {
			s.logger.Error().Err(err).Str("email", u.email).Msg("Error filling demo profile")
			return err
		}
		ids = append(ids, resp.User.ID)
	}
	ada, bruno, chiara := ids[0], ids[1], ids[2]

	var finalErr error

	tomorrow := s.now().UTC().AddDate(0, 0, 1)
	ex, err := s.svc.Exchanges.Request(ctx, ada, &dto.CreateExchangeRequest{
		RecipientID: bruno,
		Message:     "Hi Bruno! Go lessons for piano lessons?",
		Date:        tomorrow.Format("2006-01-02"),
		Time:        "18:00",
		Duration:    60,
		Timezone:    "Europe/Berlin",
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating demo exchange")
		finalErr = errors.Join(finalErr, err)
	} else {
		if _, err := s.svc.Exchanges.Accept(ctx, bruno, ex.ID); err != nil {
			finalErr = errors.Join(finalErr, err)
		} else if _, err := s.svc.Threads.SendText(ctx, bruno, ex.ID, "Sounds great, see you tomorrow!"); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	if _, err := s.svc.Exchanges.Request(ctx, chiara, &dto.CreateExchangeRequest{
		RecipientID: ada,
		Message:     "I can help with French if you teach me some SQL.",
		Date:        tomorrow.AddDate(0, 0, 2).Format("2006-01-02"),
		Time:        "10:30",
		Duration:    45,
		Timezone:    "Europe/Paris",
	}); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	if _, err := s.svc.Community.Create(ctx, chiara, &dto.CreatePostRequest{
		Content:  "Anyone in Lyon up for a photo walk this weekend?",
		Category: "Photography",
	}); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if _, err := s.svc.Resources.Create(ctx, ada, &dto.CreateResourceRequest{
		Title:       "A Tour of Go",
		Description: "Interactive introduction to Go.",
		URL:         "https://go.dev/tour",
		Skill:       "Go",
	}); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	s.logger.Info().Int("users", len(ids)).Msg("Demo data creation finished.")
	return finalErr
}
