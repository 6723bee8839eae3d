// Package seed fills an empty database with a development data set: a known
// test account plus a handful of random users, each with a few posts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/picshare/picshare-go/internal/crypto"
	"github.com/picshare/picshare-go/internal/model"
)

const (
	TestUsername = "testuser"
	TestEmail    = "test@example.com"
	TestPassword = "password"
	TestBio      = "This is a test account for development."

	testUserPosts = 5
	extraUsers    = 10
	maxPosts      = 5
	postWindow    = 30 * 24 * time.Hour
)

// ErrAlreadySeeded is returned when the test account already exists.
var ErrAlreadySeeded = errors.New("database already seeded")

// UserCreator is the part of the user repository the seeder needs.
type UserCreator interface {
	Create(ctx context.Context, user *model.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PostCreator is the part of the post repository the seeder needs.
type PostCreator interface {
	Create(ctx context.Context, post *model.Post) error
}

// Result counts the rows a seeding run created.
type Result struct {
	Users int
	Posts int
}

// Seeder creates development data.
type Seeder struct {
	users UserCreator
	posts PostCreator
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a Seeder. The same seed yields the same users and posts.
func New(users UserCreator, posts PostCreator, seed uint64) *Seeder {
	return &Seeder{
		users: users,
		posts: posts,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Run seeds the database. It refuses to run twice.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	exists, err := s.users.ExistsByEmail(ctx, TestEmail)
	if err != nil {
		return res, err
	}
	if exists {
		return res, ErrAlreadySeeded
	}

	// Every seeded account shares the same password; hash it once.
	hash, err := crypto.HashPassword(TestPassword)
	if err != nil {
		return res, fmt.Errorf("hashing seed password: %w", err)
	}

	bio := TestBio
	testUser := &model.User{
		Username:     TestUsername,
		Name:         "Test User",
		Email:        TestEmail,
		PasswordHash: hash,
		Bio:          &bio,
	}
	if err := s.createUser(ctx, testUser, testUserPosts, &res); err != nil {
		return res, err
	}

	for i := 0; i < extraUsers; i++ {
		user := s.randomUser(i, hash)
		if err := s.createUser(ctx, user, 1+s.rng.IntN(maxPosts), &res); err != nil {
			return res, err
		}
	}

	slog.Info("database seeded", "users", res.Users, "posts", res.Posts)
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context, user *model.User, posts int, res *Result) error {
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("seeding user %s: %w", user.Username, err)
	}
	res.Users++

	for i := 0; i < posts; i++ {
		post := s.randomPost(user.ID)
		if err := s.posts.Create(ctx, post); err != nil {
			return fmt.Errorf("seeding post for %s: %w", user.Username, err)
		}
		res.Posts++
	}
	return nil
}

func (s *Seeder) randomUser(n int, passwordHash string) *model.User {
	first := firstNames[s.rng.IntN(len(firstNames))]
	last := lastNames[s.rng.IntN(len(lastNames))]
	// The index keeps usernames and emails unique within one run.
	username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), n+1)

	user := &model.User{
		Username:     username,
		Name:         first + " " + last,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
	}
	if s.rng.IntN(2) == 0 {
		bio := bios[s.rng.IntN(len(bios))]
		user.Bio = &bio
	}
	if s.rng.IntN(4) != 0 {
		avatar := "https://i.pravatar.cc/150?u=" + username
		user.AvatarURL = &avatar
	}
	return user
}

func (s *Seeder) randomPost(userID int64) *model.Post {
	age := time.Duration(s.rng.Int64N(int64(postWindow)))
	return &model.Post{
		UserID:    userID,
		Caption:   captions[s.rng.IntN(len(captions))],
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/600/600", s.rng.IntN(1_000_000)),
		CreatedAt: s.now().Add(-age).Truncate(time.Second),
	}
}

var (
	firstNames = []string{"Ava", "Ben", "Chloe", "Daniel", "Emma", "Felix", "Grace", "Hugo", "Iris", "Jonas", "Kira", "Liam", "Maya", "Noah", "Olivia", "Paul"}
	lastNames  = []string{"Anderson", "Brooks", "Carter", "Dalton", "Evans", "Fischer", "Garcia", "Hayes", "Ito", "Jensen", "Klein", "Lopez"}
	bios       = []string{
		"Coffee first, photos second.",
		"Chasing light around the city.",
		"Weekend hiker and amateur baker.",
		"Film photography enthusiast.",
		"Mostly pictures of my dog.",
	}
	captions = []string{
		"Golden hour never disappoints.",
		"Sunday morning vibes.",
		"New week, new views.",
		"Found this little spot today.",
		"Can't get enough of this place.",
		"Throwback to last summer.",
		"Street corners and stories.",
		"Nothing beats fresh bread.",
	}
)
