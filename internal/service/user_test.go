package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
)

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestGetProfile_BlankID(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), testLogger())

	_, err := svc.GetProfile(context.Background(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetProfile() error = %v, want ErrValidation", err)
	}
}

func TestUpdateProfile_TrimsAndValidatesUsername(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser("auth0|edit", "editme")
	svc := NewUserService(repo, testLogger())

	padded := "  spearhead  "
	updated, err := svc.UpdateProfile(context.Background(), user.ID, model.ProfileUpdate{
		Username: &padded,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Username != "spearhead" {
		t.Errorf("Username = %q, want trimmed %q", updated.Username, "spearhead")
	}
}

func TestUpdateProfile_ShortUsername(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser("auth0|short", "goodname")
	svc := NewUserService(repo, testLogger())

	short := "ab"
	_, err := svc.UpdateProfile(context.Background(), user.ID, model.ProfileUpdate{
		Username: &short,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("UpdateProfile() error = %v, want ErrValidation", err)
	}

	// The rejected edit must not have touched the stored profile
	if repo.users[user.ID].Username != "goodname" {
		t.Errorf("Username after failed edit = %q, want %q", repo.users[user.ID].Username, "goodname")
	}
}

func TestUpdateProfile_NilFieldsUntouched(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.addUser("auth0|partial", "partialuser")
	user.Bio = "original bio"
	svc := NewUserService(repo, testLogger())

	newBio := "updated bio"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, model.ProfileUpdate{
		Bio: &newBio,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Bio != "updated bio" {
		t.Errorf("Bio = %q, want %q", updated.Bio, "updated bio")
	}
	if updated.Username != "partialuser" {
		t.Errorf("Username = %q, want untouched %q", updated.Username, "partialuser")
	}
}

// =========================================================================
// FOLLOW TESTS
// =========================================================================

func TestFollow(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	bob := repo.addUser("auth0|bob", "bob")
	svc := NewUserService(repo, testLogger())

	if err := svc.Follow(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	following, _ := repo.IsFollowing(context.Background(), alice.ID, bob.ID)
	if !following {
		t.Error("edge missing after Follow()")
	}
}

func TestFollow_AlreadyFollowing(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	bob := repo.addUser("auth0|bob", "bob")
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	if err := svc.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() first: %v", err)
	}

	err := svc.Follow(ctx, alice.ID, bob.ID)
	if !errors.Is(err, apperror.ErrAlreadyFollowing) {
		t.Fatalf("Follow() repeat error = %v, want ErrAlreadyFollowing", err)
	}

	// Still exactly one edge
	edges, _ := repo.Following(ctx, alice.ID)
	if len(edges) != 1 {
		t.Errorf("edge count = %d, want 1", len(edges))
	}
}

func TestFollow_TargetNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	svc := NewUserService(repo, testLogger())

	err := svc.Follow(context.Background(), alice.ID, "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Follow() error = %v, want ErrNotFound for missing target", err)
	}
}

func TestFollow_ActorNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	bob := repo.addUser("auth0|bob", "bob")
	svc := NewUserService(repo, testLogger())

	err := svc.Follow(context.Background(), "nonexistent-id", bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Follow() error = %v, want ErrNotFound for missing actor", err)
	}
}

// =========================================================================
// UNFOLLOW TESTS
// =========================================================================

func TestUnfollow(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	bob := repo.addUser("auth0|bob", "bob")
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	svc.Follow(ctx, alice.ID, bob.ID)
	if err := svc.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}

	following, _ := repo.IsFollowing(ctx, alice.ID, bob.ID)
	if following {
		t.Error("edge still present after Unfollow()")
	}
}

func TestUnfollow_NotFollowingIsNoOp(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	bob := repo.addUser("auth0|bob", "bob")
	svc := NewUserService(repo, testLogger())

	// Unlike Follow's duplicate check, repeating an unfollow succeeds
	if err := svc.Unfollow(context.Background(), alice.ID, bob.ID); err != nil {
		t.Errorf("Unfollow() on absent edge = %v, want nil", err)
	}
}

func TestUnfollow_TargetNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	alice := repo.addUser("auth0|alice", "alice")
	svc := NewUserService(repo, testLogger())

	err := svc.Unfollow(context.Background(), alice.ID, "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Unfollow() error = %v, want ErrNotFound for missing target", err)
	}
}
