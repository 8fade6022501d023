// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"wikiadmin/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// SeedOptions tune how the factory builds rows.
type SeedOptions struct {
	// DryRun assigns synthetic IDs and never touches the database.
	DryRun bool
	// SkipBcrypt stores a cheap hash for fast local seeding.
	SkipBcrypt bool
	// MaxDays bounds how far back generated timestamps go.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rnd  *rand.Rand
	hash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// pastTime returns a realistic timestamp within MaxDays.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(kind string, row any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		log.Printf("[dry-run] create %s id=%d", kind, f.nextID)
		return nil
	}
	return f.db.Create(row).Error
}

// BuildUser constructs an unsaved account with the given role.
func (f *Factory) BuildUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999))
	email := username + "@" + gofakeit.DomainName()
	user := &models.User{
		Username:  username,
		Email:     &email,
		Password:  hash,
		Nickname:  gofakeit.FirstName(),
		Bio:       gofakeit.Sentence(10),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:      role,
		Status:    models.UserStatusActive,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample account.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(role, overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.persist("user", user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildWiki constructs an unsaved wiki owned by creator.
func (f *Factory) BuildWiki(creator *models.User, overrides ...func(*models.Wiki)) *models.Wiki {
	name := gofakeit.AppName() + fmt.Sprintf(" %d", gofakeit.Number(10, 9999))
	sub := strings.ToLower(strings.NewReplacer(" ", "-", ".", "", "'", "").Replace(name))
	statuses := []models.WikiStatus{
		models.WikiStatusPending, models.WikiStatusDraft,
		models.WikiStatusPublished, models.WikiStatusRejected,
	}
	wiki := &models.Wiki{
		Name:            name,
		Subdomain:       sub,
		Title:           name + " Wiki",
		Description:     gofakeit.Paragraph(1, 2, 10, " "),
		Keywords:        strings.Join([]string{gofakeit.BuzzWord(), gofakeit.BuzzWord()}, ","),
		MetaDescription: gofakeit.Sentence(12),
		PrimaryColor:    gofakeit.HexColor(),
		TextColor:       "#333333",
		Status:          statuses[f.rnd.Intn(len(statuses))],
		CreatorID:       creator.ID,
		Tags:            []string{gofakeit.Word(), gofakeit.BuzzWord()},
		License:         "CC-BY-SA",
		ContactInfo:     gofakeit.Email(),
		ApplyReason:     gofakeit.Sentence(8),
		PageCount:       f.rnd.Intn(500),
		ViewCount:       int64(f.rnd.Intn(100000)),
		CreatedAt:       f.pastTime(),
	}
	if wiki.Status == models.WikiStatusRejected {
		wiki.RejectReason = gofakeit.Sentence(6)
	}
	for _, override := range overrides {
		override(wiki)
	}
	return wiki
}

// CreateWiki constructs and persists a sample wiki.
func (f *Factory) CreateWiki(creator *models.User, overrides ...func(*models.Wiki)) (*models.Wiki, error) {
	wiki := f.BuildWiki(creator, overrides...)
	if err := f.persist("wiki", wiki, func(id uint) { wiki.ID = id }); err != nil {
		return nil, err
	}
	return wiki, nil
}

// CreateCategory persists a category, optionally under parent.
func (f *Factory) CreateCategory(parent *models.ArticleCategory, overrides ...func(*models.ArticleCategory)) (*models.ArticleCategory, error) {
	category := &models.ArticleCategory{
		Name:        gofakeit.HipsterWord() + " " + gofakeit.Noun(),
		Description: gofakeit.Sentence(8),
		Sort:        f.rnd.Intn(100),
		IsEnabled:   true,
	}
	if parent != nil {
		category.ParentID = &parent.ID
	}
	for _, override := range overrides {
		override(category)
	}
	if err := f.persist("category", category, func(id uint) { category.ID = id }); err != nil {
		return nil, err
	}
	return category, nil
}

// BuildArticle constructs an unsaved article in category.
func (f *Factory) BuildArticle(category *models.ArticleCategory, author *models.User, overrides ...func(*models.Article)) *models.Article {
	n := 1 + f.rnd.Intn(3)
	paragraphs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paragraphs = append(paragraphs, "<p>"+gofakeit.Paragraph(1, 4, 12, " ")+"</p>")
	}
	status := models.ArticleStatusPublished
	if f.rnd.Intn(4) == 0 {
		status = models.ArticleStatusDraft
	}
	article := &models.Article{
		Title:      gofakeit.Sentence(5),
		Content:    strings.Join(paragraphs, "\n"),
		Summary:    gofakeit.Sentence(15),
		ViewCount:  int64(f.rnd.Intn(5000)),
		Status:     status,
		Tags:       []string{gofakeit.BuzzWord()},
		CategoryID: category.ID,
		CreatedAt:  f.pastTime(),
	}
	if author != nil {
		article.AuthorID = &author.ID
	}
	for _, override := range overrides {
		override(article)
	}
	return article
}

// CreateArticle constructs and persists a sample article.
func (f *Factory) CreateArticle(category *models.ArticleCategory, author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	article := f.BuildArticle(category, author, overrides...)
	if err := f.persist("article", article, func(id uint) { article.ID = id }); err != nil {
		return nil, err
	}
	return article, nil
}

// CreateComment constructs and persists a sample comment by user, attached
// to article when given.
func (f *Factory) CreateComment(user *models.User, article *models.Article, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   gofakeit.Sentence(8),
		UserID:    user.ID,
		IsActive:  f.rnd.Intn(10) > 0,
		Likes:     f.rnd.Intn(200),
		CreatedAt: f.pastTime(),
	}
	if article != nil {
		comment.ArticleID = &article.ID
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.persist("comment", comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateConfig persists a config together with its satellite value rows.
// GORM inserts the associations set on cfg in the same call.
func (f *Factory) CreateConfig(cfg *models.Config) (*models.Config, error) {
	if err := f.persist("config", cfg, func(id uint) { cfg.ID = id }); err != nil {
		return nil, err
	}
	return cfg, nil
}
