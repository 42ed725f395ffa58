package database

import (
	"fmt"
	"log"

	"github.com/pageza/snapfeed/backend/internal/models"
	"gorm.io/gorm"
)

// joinTables lists the custom join models backing the many2many relations.
// They must be registered before AutoMigrate so the composite primary keys
// and timestamps are created.
var joinTables = []struct {
	model interface{}
	field string
	join  interface{}
}{
	{&models.Profile{}, "Followers", &models.ProfileFollower{}},
	{&models.Post{}, "Likes", &models.PostLike{}},
	{&models.Post{}, "SavedBy", &models.PostSave{}},
}

// Models returns every table the application owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.Image{},
	}
}

// SetupJoinTables registers the join models on db. It is idempotent.
func SetupJoinTables(db *gorm.DB) error {
	for _, jt := range joinTables {
		if err := db.SetupJoinTable(jt.model, jt.field, jt.join); err != nil {
			return fmt.Errorf("failed to set up join table for %s: %w", jt.field, err)
		}
	}
	return nil
}

// RunMigrations creates or updates the schema for all models.
func RunMigrations(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}

	log.Printf("Running GORM auto-migration for %s", db.Dialector.Name())
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DropAll removes every application table, join tables included.
func DropAll(db *gorm.DB) error {
	tables := []interface{}{&models.ProfileFollower{}, &models.PostLike{}, &models.PostSave{}}
	tables = append(tables, Models()...)
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
