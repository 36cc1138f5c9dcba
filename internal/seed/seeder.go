package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevPassword is the password of every seeded account
const DevPassword = "blogicum-dev-pass"

// Counts sets how many rows of each kind a seed run creates
type Counts struct {
	Users      int
	Categories int
	Locations  int
	Posts      int
	Comments   int
}

// DevCounts is the data set created by SeedDev
var DevCounts = Counts{
	Users:      20,
	Categories: 6,
	Locations:  8,
	Posts:      120,
	Comments:   400,
}

// Seeder handles database seeding operations
type Seeder struct {
	db         *gorm.DB
	now        func() time.Time
	bcryptCost int
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:         db,
		now:        func() time.Time { return time.Now().UTC() },
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost lowers the hashing cost, for tests
func (s *Seeder) WithBcryptCost(cost int) *Seeder {
	s.bcryptCost = cost
	return s
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	return s.Seed(DevCounts)
}

// Seed creates users, categories, locations, posts and comments. Some posts
// are drafts, scheduled or uncategorized so every visibility rule has data.
func (s *Seeder) Seed(counts Counts) error {
	logger.Log.Info("Creating users...", zap.Int("count", counts.Users))
	users, err := s.seedUsers(counts.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating categories...", zap.Int("count", counts.Categories))
	categories, err := s.seedCategories(counts.Categories)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	logger.Log.Info("Creating locations...", zap.Int("count", counts.Locations))
	locations, err := s.seedLocations(counts.Locations)
	if err != nil {
		return fmt.Errorf("failed to seed locations: %w", err)
	}

	logger.Log.Info("Creating posts...", zap.Int("count", counts.Posts))
	posts, err := s.seedPosts(users, categories, locations, counts.Posts)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating comments...", zap.Int("count", counts.Comments))
	if err := s.seedComments(users, posts, counts.Comments); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return nil
}

// Clean removes all blog data (use with caution)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	for _, table := range []string{"comments", "posts", "password_resets", "locations", "categories", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	if count <= 0 {
		return nil, fmt.Errorf("at least one user is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		email := gofakeit.Email()

		// Ensure unique username/email
		var existing models.User
		for {
			if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == gorm.ErrRecordNotFound {
				break
			}
			username = gofakeit.Username()
			email = gofakeit.Email()
		}

		user := models.User{
			Username:     username,
			FirstName:    gofakeit.FirstName(),
			LastName:     gofakeit.LastName(),
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    gofakeit.DateRange(s.now().AddDate(-1, 0, 0), s.now()),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) seedCategories(count int) ([]models.Category, error) {
	categories := make([]models.Category, 0, count)
	for i := 0; i < count; i++ {
		word := gofakeit.Word()
		title := strings.ToUpper(word[:1]) + word[1:]
		category := models.Category{
			Title:       title,
			Description: gofakeit.HipsterSentence(),
			Slug:        fmt.Sprintf("%s-%d", strings.ToLower(title), i+1),
			// The first category is always published so the feed is never empty
			IsPublished: i == 0 || rand.Intn(5) != 0,
		}
		if err := s.db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("failed to create category %s: %w", category.Slug, err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *Seeder) seedLocations(count int) ([]models.Location, error) {
	locations := make([]models.Location, 0, count)
	for i := 0; i < count; i++ {
		location := models.Location{
			Name:        gofakeit.City() + ", " + gofakeit.Country(),
			IsPublished: rand.Intn(4) != 0,
		}
		if err := s.db.Create(&location).Error; err != nil {
			return nil, fmt.Errorf("failed to create location: %w", err)
		}
		locations = append(locations, location)
	}
	return locations, nil
}

// seedPosts spreads pub dates from 90 days ago to 14 days ahead. About one
// post in seven is a draft and one in ten has no category.
func (s *Seeder) seedPosts(users []models.User, categories []models.Category, locations []models.Location, count int) ([]models.Post, error) {
	now := s.now()
	posts := make([]models.Post, 0, count)

	for i := 0; i < count; i++ {
		pubDate := gofakeit.DateRange(now.AddDate(0, 0, -90), now.AddDate(0, 0, 14)).UTC()
		post := models.Post{
			Title:       fakeTitle(rand.Intn(6) + 3),
			Text:        fakeText(rand.Intn(4) + 1),
			PubDate:     pubDate,
			IsPublished: rand.Intn(7) != 0,
			IsScheduled: pubDate.After(now),
			AuthorID:    users[rand.Intn(len(users))].ID,
			CreatedAt:   now,
		}
		if len(categories) > 0 && rand.Intn(10) != 0 {
			post.CategoryID = &categories[rand.Intn(len(categories))].ID
		}
		if len(locations) > 0 && rand.Intn(2) == 0 {
			post.LocationID = &locations[rand.Intn(len(locations))].ID
		}

		if err := s.db.Omit("Author", "Category", "Location").Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	if len(posts) == 0 {
		return nil
	}

	now := s.now()
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]
		createdAt := now
		if post.PubDate.Before(now) {
			createdAt = gofakeit.DateRange(post.PubDate, now)
		}

		comment := models.Comment{
			Text:      fakeSentences(rand.Intn(2) + 1),
			PostID:    post.ID,
			AuthorID:  users[rand.Intn(len(users))].ID,
			CreatedAt: createdAt,
		}
		if err := s.db.Omit("Author", "Post").Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	return nil
}

// fakeText builds paragraphs separated by blank lines
func fakeText(paragraphs int) string {
	parts := make([]string, paragraphs)
	for i := range parts {
		parts[i] = fakeSentences(rand.Intn(4) + 2)
	}
	return strings.Join(parts, "\n\n")
}

// fakeSentences joins n hipster sentences
func fakeSentences(n int) string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = gofakeit.HipsterSentence()
	}
	return strings.Join(sentences, " ")
}

// fakeTitle takes up to words words of a sentence, without the final period
func fakeTitle(words int) string {
	fields := strings.Fields(strings.TrimSuffix(gofakeit.HipsterSentence(), "."))
	if len(fields) > words {
		fields = fields[:words]
	}
	return strings.Join(fields, " ")
}
