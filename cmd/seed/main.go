package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/database"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

type demoUser struct {
	username  string
	firstName string
	lastName  string
	bio       string
	posts     []string
	follows   []string
}

var demoUsers = []demoUser{
	{
		username:  "ada",
		firstName: "Ada",
		lastName:  "Lovelace",
		bio:       "Notes on engines, analytical and otherwise.",
		posts:     []string{"First light over the harbour.", "Sketching a new loom pattern."},
		follows:   []string{"grace", "linus"},
	},
	{
		username:  "grace",
		firstName: "Grace",
		lastName:  "Hopper",
		bio:       "Found a moth in the relay today.",
		posts:     []string{"A nanosecond is about a foot of wire."},
		follows:   []string{"ada"},
	},
	{
		username: "linus",
		bio:      "Mostly photos of penguins.",
		posts:    []string{"Penguin spotted near the pier!"},
	},
}

func main() {
	password := flag.String("password", "snapfeed-demo", "Password for every demo account")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.BcryptCost, service.NewMemoryBlocklist())
	posts := service.NewPostService(db, service.NewImageService(service.NewDBStore(db), cfg.MaxUploadBytes))

	users := make(map[string]*models.User, len(demoUsers))
	for _, du := range demoUsers {
		user, created, err := ensureUser(ctx, db, auth, du, *password)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", du.username, err)
		}
		users[du.username] = user
		if !created {
			log.Printf("User %s already exists, skipping...", du.username)
			continue
		}

		if err := db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Update("bio", du.bio).Error; err != nil {
			log.Fatalf("Failed to set bio for %s: %v", du.username, err)
		}
		for _, content := range du.posts {
			if _, err := posts.CreatePost(ctx, user.ID, &types.PostInput{Content: content}); err != nil {
				log.Fatalf("Failed to create post for %s: %v", du.username, err)
			}
		}
		log.Printf("Created user %s with %d posts", du.username, len(du.posts))
	}

	for _, du := range demoUsers {
		for _, target := range du.follows {
			if err := follow(db, users[du.username], users[target]); err != nil {
				log.Fatalf("Failed to make %s follow %s: %v", du.username, target, err)
			}
		}
	}

	log.Printf("Seeded %d demo users. Password: %s", len(demoUsers), *password)
}

// ensureUser registers du unless the username is already taken.
func ensureUser(ctx context.Context, db *gorm.DB, auth *service.AuthService, du demoUser, password string) (*models.User, bool, error) {
	user, _, err := auth.Register(ctx, &types.RegisterForm{
		Username:        du.username,
		Email:           du.username + "@example.com",
		FirstName:       du.firstName,
		LastName:        du.lastName,
		Password:        password,
		PasswordConfirm: password,
	})
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, service.ErrUsernameTaken) {
		return nil, false, err
	}

	var existing models.User
	if err := db.Where("username = ?", du.username).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// follow records the relation without toggling an existing one off.
func follow(db *gorm.DB, follower, target *models.User) error {
	var profile models.Profile
	if err := db.Where("user_id = ?", target.ID).First(&profile).Error; err != nil {
		return err
	}
	row := models.ProfileFollower{ProfileID: profile.ID, UserID: follower.ID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
