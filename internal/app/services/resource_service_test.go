package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

func shareResource(t *testing.T, f *fixture, userID, title, skill string) *dto.ResourceResponse {
	t.Helper()
	res, err := f.resourceSvc.Create(context.Background(), userID, &dto.CreateResourceRequest{
		Title: title, URL: "https://example.com/" + title, Skill: skill,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res
}

func TestResourceCreateValidation(t *testing.T) {
	f := newFixture()
	alice, _ := goPianoPair(f)

	cases := map[string]dto.CreateResourceRequest{
		"title": {Title: " ", URL: "https://go.dev", Skill: "Go"},
		"url":   {Title: "Tour", URL: "ftp://go.dev", Skill: "Go"},
		"skill": {Title: "Tour", URL: "https://go.dev", Skill: "All"},
	}
	for field, req := range cases {
		req := req
		if _, err := f.resourceSvc.Create(context.Background(), alice.ID, &req); apperrors.FieldOf(err) != field {
			t.Errorf("%s: err = %v", field, err)
		}
	}
}

func TestResourceListFilterAndLikes(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	shareResource(t, f, alice.ID, "tour", "Go")
	scales := shareResource(t, f, bob.ID, "scales", "Piano")

	all, err := f.resourceSvc.List(context.Background(), alice.ID, &dto.ResourceFilterRequest{Skill: "all"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all.Resources) != 2 || all.Resources[0].ID != scales.ID {
		t.Fatalf("resources = %+v", all.Resources)
	}

	piano, _ := f.resourceSvc.List(context.Background(), alice.ID, &dto.ResourceFilterRequest{Skill: "Piano"})
	if len(piano.Resources) != 1 || piano.Resources[0].AuthorName != "Bob" {
		t.Errorf("piano resources = %+v", piano.Resources)
	}

	like, err := f.resourceSvc.ToggleLike(context.Background(), alice.ID, scales.ID)
	if err != nil || !like.Liked {
		t.Fatalf("ToggleLike = %+v, %v", like, err)
	}
	liked, _ := f.resourceSvc.List(context.Background(), alice.ID, nil)
	if !liked.Resources[0].LikedByMe || liked.Resources[0].LikeCount != 1 || liked.Resources[0].IsAuthor {
		t.Errorf("liked resource = %+v", liked.Resources[0])
	}

	skills, err := f.resourceSvc.Skills(context.Background())
	if err != nil || len(skills.Skills) != 2 || skills.Skills[0] != "Go" {
		t.Errorf("skills = %+v, %v", skills, err)
	}
	if !f.publisher.published(ResourcesTopic) {
		t.Error("resources topic not published")
	}
}

func TestResourceDeleteRequiresAuthor(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	res := shareResource(t, f, alice.ID, "tour", "Go")

	if err := f.resourceSvc.Delete(context.Background(), bob.ID, res.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("non-author delete err = %v", err)
	}
	if err := f.resourceSvc.Delete(context.Background(), alice.ID, res.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.resourceSvc.Delete(context.Background(), alice.ID, res.ID); !errors.Is(err, apperrors.ErrLearningResNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
