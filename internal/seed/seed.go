// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"buzzsway/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumMessages int
	ShouldClean bool
}

// Seeder populates the database with plausible demo data. Every generated
// account uses the password "password123".
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Seed populates the database with test data
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := s.createFollowGraph(users); err != nil {
		return fmt.Errorf("failed to create follow graph: %w", err)
	}
	if err := s.createEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}

	numMessages := opts.NumMessages
	if numMessages == 0 {
		numMessages = len(users) * 10
	}
	if err := s.createConversations(users, numMessages); err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// ClearAll wipes every seeded table and resets identity sequences.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, follows, messages, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

func (s *Seeder) createUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// Always include a few fixed accounts so developers can log in without
	// digging through the generated ones.
	if count >= 3 {
		for _, u := range []string{"alice", "bob", "test"} {
			user := models.User{
				Username: u,
				Email:    fmt.Sprintf("%s@example.com", u),
				Password: string(hashedPassword),
				Bio:      "One of the originals.",
				Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", u),
			}
			if err := s.db.Create(&user).Error; err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		username := uniqueUsername(i)
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			Password:  string(hashedPassword),
			Bio:       gofakeit.Sentence(10),
			Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			CreatedAt: s.backdate(365),
		}
		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("Failed to create user %s: %v", username, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func (s *Seeder) createPosts(users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[s.rng.Intn(len(users))]
		post := models.Post{
			UserID:    user.ID,
			MediaURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Caption:   gofakeit.Sentence(s.rng.Intn(15) + 1),
			CreatedAt: s.backdate(90),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	return posts, nil
}

// createFollowGraph gives each user a handful of random followees. Duplicate
// edges are skipped via the unique index rather than tracked in memory.
func (s *Seeder) createFollowGraph(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	for _, follower := range users {
		edges := s.rng.Intn(8) + 1
		for i := 0; i < edges; i++ {
			followee := users[s.rng.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			err := s.db.Exec(
				`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT (follower_id, followee_id) DO NOTHING`,
				follower.ID, followee.ID,
			).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) createEngagement(users []models.User, posts []models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for _, post := range posts {
		likes := s.rng.Intn(len(users))
		for i := 0; i < likes; i++ {
			user := users[s.rng.Intn(len(users))]
			err := s.db.Exec(
				`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT (user_id, post_id) DO NOTHING`,
				user.ID, post.ID,
			).Error
			if err != nil {
				return err
			}
		}

		comments := s.rng.Intn(6)
		for i := 0; i < comments; i++ {
			user := users[s.rng.Intn(len(users))]
			comment := models.Comment{
				PostID:    post.ID,
				UserID:    user.ID,
				Text:      gofakeit.Sentence(s.rng.Intn(12) + 2),
				CreatedAt: s.backdate(30),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// createConversations scatters direct messages over random user pairs so the
// chat views have history to page through.
func (s *Seeder) createConversations(users []models.User, count int) error {
	if len(users) < 2 {
		return nil
	}

	for i := 0; i < count; i++ {
		sender := users[s.rng.Intn(len(users))]
		receiver := users[s.rng.Intn(len(users))]
		if receiver.ID == sender.ID {
			continue
		}
		msg := models.Message{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    gofakeit.Sentence(s.rng.Intn(10) + 1),
			CreatedAt:  s.backdate(14),
		}
		if err := s.db.Create(&msg).Error; err != nil {
			return err
		}
	}
	return nil
}

// backdate returns a timestamp up to maxDays in the past for a realistic
// created_at spread.
func (s *Seeder) backdate(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 1
	}
	daysBack := s.rng.Intn(maxDays)
	hoursBack := s.rng.Intn(24)
	minsBack := s.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

func uniqueUsername(i int) string {
	return fmt.Sprintf("%s%d", gofakeit.Username(), i)
}
