package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
)

// createTestSession logs a session on the given date and fails the test if it
// errors. The owning user must already exist (foreign key).
func createTestSession(t *testing.T, s *SessionDB, ownerID string, date time.Time) *model.Session {
	t.Helper()
	session := &model.Session{
		UserID: ownerID,
		Date:   date,
		Location: model.Location{
			Name:        "Test Reef",
			Coordinates: model.Coordinates{Lat: 36.1, Lng: -5.3},
		},
		Catches: []model.Catch{},
	}
	if err := s.Create(context.Background(), session); err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestSessionCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|diver", "diver")
	s := db.Sessions()

	session := &model.Session{
		UserID: owner.ID,
		Date:   time.Date(2026, 8, 15, 7, 0, 0, 0, time.UTC),
		Location: model.Location{
			Name:        "Punta Carnero",
			Coordinates: model.Coordinates{Lat: 36.07, Lng: -5.42},
		},
		Catches: []model.Catch{
			{Species: "white seabream", Size: 32, Weight: 0.8},
			{Species: "dentex", Size: 55, Weight: 2.4, Photo: "https://example.com/dentex.jpg"},
		},
		Conditions: model.Conditions{
			Visibility: 4,
			WaterTemp:  19.5,
			Tide:       "rising",
			Weather:    "calm",
		},
		Notes: "thermocline at 12m",
	}

	err := s.Create(context.Background(), session)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ID == "" {
		t.Error("Create() did not set session.ID")
	}
	if session.CreatedAt.IsZero() {
		t.Error("Create() did not set session.CreatedAt")
	}
	// A fresh session starts with empty likes and comments, not nil
	if session.Likes == nil || session.Comments == nil {
		t.Error("Create() left Likes/Comments nil")
	}
}

// =========================================================================
// GET BY ID TESTS
// =========================================================================

func TestSessionGetByID_ExpandsEverything(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|owner", "sessionowner")
	liker := createTestUser(t, db.Users(), "auth0|liker", "sessionliker")
	s := db.Sessions()
	ctx := context.Background()

	session := &model.Session{
		UserID: owner.ID,
		Date:   time.Date(2026, 8, 20, 6, 30, 0, 0, time.UTC),
		Catches: []model.Catch{
			{Species: "grouper", Size: 60, Weight: 3.1},
		},
		Conditions: model.Conditions{Visibility: 3, Tide: "high"},
	}
	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	if _, err := s.ToggleLike(ctx, session.ID, liker.ID); err != nil {
		t.Fatalf("ToggleLike(): %v", err)
	}
	comment := &model.Comment{UserID: liker.ID, Text: "nice grouper!"}
	if err := s.AddComment(ctx, session.ID, comment); err != nil {
		t.Fatalf("AddComment(): %v", err)
	}

	found, err := s.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	// Owner expanded to a summary
	if found.User == nil {
		t.Fatal("GetByID() did not expand the owner")
	}
	if found.User.ID != owner.ID || found.User.Username != "sessionowner" {
		t.Errorf("owner summary = %+v, want id=%s username=sessionowner", found.User, owner.ID)
	}

	if len(found.Catches) != 1 || found.Catches[0].Species != "grouper" {
		t.Errorf("Catches = %+v, want [grouper]", found.Catches)
	}

	if len(found.Likes) != 1 || found.Likes[0].Username != "sessionliker" {
		t.Errorf("Likes = %+v, want [sessionliker]", found.Likes)
	}

	if len(found.Comments) != 1 {
		t.Fatalf("Comments count = %d, want 1", len(found.Comments))
	}
	got := found.Comments[0]
	if got.Text != "nice grouper!" {
		t.Errorf("comment text = %q, want %q", got.Text, "nice grouper!")
	}
	if got.User == nil || got.User.Username != "sessionliker" {
		t.Errorf("comment author = %+v, want sessionliker", got.User)
	}

	if found.Conditions.Visibility != 3 || found.Conditions.Tide != "high" {
		t.Errorf("Conditions = %+v, want visibility=3 tide=high", found.Conditions)
	}
}

func TestSessionGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Sessions().GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST BY USER TESTS
// =========================================================================

func TestListByUser_NewestDateFirst(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|lister", "lister")
	other := createTestUser(t, db.Users(), "auth0|other", "otherdiver")
	s := db.Sessions()

	// Insert out of date order to prove ordering is by date, not insertion
	mid := createTestSession(t, s, owner.ID, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	oldest := createTestSession(t, s, owner.ID, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	newest := createTestSession(t, s, owner.ID, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	createTestSession(t, s, other.ID, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))

	sessions, err := s.ListByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(sessions) != 3 {
		t.Fatalf("ListByUser() count = %d, want 3 (other user's session excluded)", len(sessions))
	}
	wantOrder := []string{newest.ID, mid.ID, oldest.ID}
	for i, want := range wantOrder {
		if sessions[i].ID != want {
			t.Errorf("sessions[%d].ID = %q, want %q", i, sessions[i].ID, want)
		}
	}
}

func TestListByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|empty", "emptydiver")

	sessions, err := db.Sessions().ListByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("ListByUser() = %v, want empty slice", sessions)
	}
}

// =========================================================================
// FEED TESTS
// =========================================================================

func TestFeed_MembershipAndOrder(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db.Users(), "auth0|feed_a", "feed_alice")
	bob := createTestUser(t, db.Users(), "auth0|feed_b", "feed_bob")
	stranger := createTestUser(t, db.Users(), "auth0|feed_s", "feed_stranger")
	s := db.Sessions()

	aliceSession := createTestSession(t, s, alice.ID, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC))
	bobSession := createTestSession(t, s, bob.ID, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC))
	createTestSession(t, s, stranger.ID, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))

	feed, err := s.Feed(context.Background(), []string{alice.ID, bob.ID}, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	// Stranger's newer session must not leak in
	if len(feed) != 2 {
		t.Fatalf("Feed() count = %d, want 2", len(feed))
	}
	if feed[0].ID != bobSession.ID || feed[1].ID != aliceSession.ID {
		t.Errorf("Feed() order = [%s, %s], want [%s, %s]",
			feed[0].ID, feed[1].ID, bobSession.ID, aliceSession.ID)
	}
	// Owners come back expanded, same as GetByID
	if feed[0].User == nil || feed[0].User.Username != "feed_bob" {
		t.Errorf("feed[0].User = %+v, want feed_bob", feed[0].User)
	}
}

func TestFeed_CapsAtLimit(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|prolific", "prolific")
	s := db.Sessions()

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		createTestSession(t, s, owner.ID, base.AddDate(0, 0, i))
	}

	feed, err := s.Feed(context.Background(), []string{owner.ID}, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 20 {
		t.Fatalf("Feed() count = %d, want 20 (capped)", len(feed))
	}

	// The cap keeps the NEWEST 20: the top entry is day 24, the last day 5
	if !feed[0].Date.Equal(base.AddDate(0, 0, 24)) {
		t.Errorf("feed[0].Date = %v, want %v", feed[0].Date, base.AddDate(0, 0, 24))
	}
	if !feed[19].Date.Equal(base.AddDate(0, 0, 5)) {
		t.Errorf("feed[19].Date = %v, want %v", feed[19].Date, base.AddDate(0, 0, 5))
	}
}

func TestFeed_NoAuthors(t *testing.T) {
	db := newTestDB(t)

	feed, err := db.Sessions().Feed(context.Background(), []string{}, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("Feed() with no authors = %d sessions, want 0", len(feed))
	}
}

// =========================================================================
// LIKE TOGGLE TESTS
// =========================================================================

func TestToggleLike_TwiceRestoresState(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|t_owner", "t_owner")
	liker := createTestUser(t, db.Users(), "auth0|t_liker", "t_liker")
	s := db.Sessions()
	ctx := context.Background()

	session := createTestSession(t, s, owner.ID, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	// First toggle: likes
	liked, err := s.ToggleLike(ctx, session.ID, liker.ID)
	if err != nil {
		t.Fatalf("ToggleLike() first: %v", err)
	}
	if !liked {
		t.Error("first ToggleLike() = false, want true (now liked)")
	}

	found, _ := s.GetByID(ctx, session.ID)
	if len(found.Likes) != 1 || found.Likes[0].ID != liker.ID {
		t.Errorf("Likes after first toggle = %+v, want [t_liker]", found.Likes)
	}

	// Second toggle: unlikes
	liked, err = s.ToggleLike(ctx, session.ID, liker.ID)
	if err != nil {
		t.Fatalf("ToggleLike() second: %v", err)
	}
	if liked {
		t.Error("second ToggleLike() = true, want false (no longer liked)")
	}

	found, _ = s.GetByID(ctx, session.ID)
	if len(found.Likes) != 0 {
		t.Errorf("Likes after second toggle = %+v, want empty", found.Likes)
	}
}

func TestToggleLike_IndependentUsers(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|i_owner", "i_owner")
	first := createTestUser(t, db.Users(), "auth0|i_first", "i_first")
	second := createTestUser(t, db.Users(), "auth0|i_second", "i_second")
	s := db.Sessions()
	ctx := context.Background()

	session := createTestSession(t, s, owner.ID, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))

	s.ToggleLike(ctx, session.ID, first.ID)
	s.ToggleLike(ctx, session.ID, second.ID)
	// first unlikes; second's like must survive
	s.ToggleLike(ctx, session.ID, first.ID)

	found, _ := s.GetByID(ctx, session.ID)
	if len(found.Likes) != 1 || found.Likes[0].ID != second.ID {
		t.Errorf("Likes = %+v, want only i_second", found.Likes)
	}
}

func TestToggleLike_SessionNotFound(t *testing.T) {
	db := newTestDB(t)
	liker := createTestUser(t, db.Users(), "auth0|lost", "lostliker")

	_, err := db.Sessions().ToggleLike(context.Background(), "nonexistent-id", liker.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ToggleLike() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestAddComment_AppendOrder(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db.Users(), "auth0|c_owner", "c_owner")
	commenter := createTestUser(t, db.Users(), "auth0|c_talker", "c_talker")
	s := db.Sessions()
	ctx := context.Background()

	session := createTestSession(t, s, owner.ID, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		c := &model.Comment{UserID: commenter.ID, Text: fmt.Sprintf("comment %d", i)}
		if err := s.AddComment(ctx, session.ID, c); err != nil {
			t.Fatalf("AddComment() #%d: %v", i, err)
		}
		if c.ID == "" {
			t.Errorf("AddComment() #%d did not set comment.ID", i)
		}
		if c.CreatedAt.IsZero() {
			t.Errorf("AddComment() #%d did not set comment.CreatedAt", i)
		}
	}

	found, err := s.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetByID(): %v", err)
	}
	if len(found.Comments) != 3 {
		t.Fatalf("Comments count = %d, want 3", len(found.Comments))
	}
	for i, c := range found.Comments {
		want := fmt.Sprintf("comment %d", i)
		if c.Text != want {
			t.Errorf("Comments[%d].Text = %q, want %q (append order)", i, c.Text, want)
		}
	}
}

func TestAddComment_SessionNotFound(t *testing.T) {
	db := newTestDB(t)
	commenter := createTestUser(t, db.Users(), "auth0|ghost", "ghosttalker")

	err := db.Sessions().AddComment(context.Background(), "nonexistent-id",
		&model.Comment{UserID: commenter.ID, Text: "hello?"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddComment() error = %v, want ErrNotFound", err)
	}
}
