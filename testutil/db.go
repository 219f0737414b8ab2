// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"servify-server/database"
	"servify-server/models"
)

// NewDB returns a migrated, isolated in-memory SQLite database with foreign
// keys enforced. All access goes through a single connection so concurrent
// transactions are serialized the way row locks serialize them on Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given role. Passwords are not hashed.
func CreateUser(t testing.TB, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:         string(role) + " user",
		Email:        fmt.Sprintf("%s-%s@servify.test", role, uuid.NewString()[:8]),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProfessional inserts a professional user together with their profile.
func CreateProfessional(t testing.TB, db *gorm.DB) (*models.User, *models.ProfessionalProfile) {
	t.Helper()
	user := CreateUser(t, db, models.RoleProfessional)
	profile := &models.ProfessionalProfile{
		UserID:          user.ID,
		ServiceRadiusKm: models.DefaultServiceRadiusKm,
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func CreateSubcategory(t testing.TB, db *gorm.DB, categoryID uint, name string) *models.Subcategory {
	t.Helper()
	sub := &models.Subcategory{CategoryID: categoryID, Name: name}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

// CreateSolicitation inserts a solicitation directly in the given status.
func CreateSolicitation(t testing.TB, db *gorm.DB, clientID, categoryID uint, status models.SolicitationStatus) *models.Solicitation {
	t.Helper()
	solicitation := &models.Solicitation{
		ClientID:   clientID,
		CategoryID: categoryID,
		Title:      "Fix the kitchen sink",
		Status:     status,
	}
	require.NoError(t, db.Create(solicitation).Error)
	return solicitation
}

// CreateProposal inserts a proposal directly in the given status.
func CreateProposal(t testing.TB, db *gorm.DB, solicitationID, professionalID uint, status models.ProposalStatus) *models.Proposal {
	t.Helper()
	proposal := &models.Proposal{
		SolicitationID: solicitationID,
		ProfessionalID: professionalID,
		Amount:         decimal.NewFromInt(150),
		DurationDays:   2,
		Status:         status,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

// Reload refreshes dest from the database by primary key.
func Reload(t testing.TB, db *gorm.DB, dest interface{}) {
	t.Helper()
	require.NoError(t, db.First(dest).Error)
}
