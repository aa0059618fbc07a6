// Package seed provides helpers to create demo data for development and
// testing. Posts are built as whole documents: comments and likes are
// embedded before the post is stored.
package seed

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"inkpost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Inkpost-Seed-2024!"

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	rng     *rand.Rand
	maxDays int
	pwHash  string
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, maxDays int) (*Factory, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDays <= 0 {
		maxDays = 90
	}
	// Hash once: bcrypt dominates seeding time otherwise.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:      db,
		faker:   gofakeit.New(seed),
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		maxDays: maxDays,
		pwHash:  string(hash),
	}, nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: f.username(),
		Email:    strings.ToLower(f.faker.Email()),
		Password: f.pwHash,
		Role:     models.RoleMember,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (f *Factory) username() string {
	name := usernameUnsafe.ReplaceAllString(f.faker.Username(), "")
	name = strings.Trim(name, "_-")
	if len(name) > 24 {
		name = name[:24]
	}
	if len(name) < 3 {
		name = "user"
	}
	return fmt.Sprintf("%s%d", name, f.faker.Number(100, 99999))
}

// BuildPost constructs a post by author with comments and likes drawn from
// participants. It does not persist the post.
func (f *Factory) BuildPost(author *models.User, participants []*models.User, maxComments, maxLikes int) *models.Post {
	createdAt := f.pastTime()
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(f.rng.Intn(6)+3), "."),
		Content:   f.faker.Paragraph(f.rng.Intn(3)+1, 4, 12, "\n\n"),
		AuthorID:  author.ID,
		Tags:      f.tags(),
		Likes:     models.LikeSet{},
		Comments:  []models.Comment{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if len(participants) == 0 {
		return post
	}

	for _, i := range f.rng.Perm(len(participants))[:f.rng.Intn(min(maxLikes, len(participants))+1)] {
		post.Likes = append(post.Likes, participants[i].ID)
	}

	at := createdAt
	for range f.rng.Intn(maxComments + 1) {
		at = at.Add(time.Duration(f.rng.Intn(180)+1) * time.Minute)
		commenter := participants[f.rng.Intn(len(participants))]
		post.AppendComment(models.NewComment(commenter.ID, f.faker.Sentence(f.rng.Intn(12)+3), at))
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

func (f *Factory) tags() []string {
	n := f.rng.Intn(4)
	tags := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for range n {
		tag := strings.ToLower(f.faker.HipsterWord())
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// pastTime spreads timestamps over the last maxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Intn(f.maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}
