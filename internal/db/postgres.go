package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/types"
	"github.com/classtrack/classtrack-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "classtrack", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Course{},
		&types.Source{},
		&types.Assignment{},
		&types.DueDate{},
		&types.UserAssignment{},
		&types.UserCourse{},
		&types.JobSyncGroup{},
		&types.JobSync{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		sql  string
	}{
		// Due dates die with their assignment.
		{"fk_due_dates_assignment_id", `
			ALTER TABLE "due_dates"
			ADD CONSTRAINT "fk_due_dates_assignment_id"
			FOREIGN KEY ("assignment_id")
			REFERENCES "assignments"("id")
			ON DELETE CASCADE`},
		{"fk_user_assignments_assignment_id", `
			ALTER TABLE "user_assignments"
			ADD CONSTRAINT "fk_user_assignments_assignment_id"
			FOREIGN KEY ("assignment_id")
			REFERENCES "assignments"("id")
			ON DELETE CASCADE`},
		{"fk_user_assignments_user_id", `
			ALTER TABLE "user_assignments"
			ADD CONSTRAINT "fk_user_assignments_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "users"("id")
			ON DELETE CASCADE`},
		{"fk_user_courses_user_id", `
			ALTER TABLE "user_courses"
			ADD CONSTRAINT "fk_user_courses_user_id"
			FOREIGN KEY ("user_id")
			REFERENCES "users"("id")
			ON DELETE CASCADE`},
		{"fk_user_courses_course_id", `
			ALTER TABLE "user_courses"
			ADD CONSTRAINT "fk_user_courses_course_id"
			FOREIGN KEY ("course_id")
			REFERENCES "courses"("id")
			ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		exists, err := s.constraintExists(c.name)
		if err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) constraintExists(name string) (bool, error) {
	var count int64
	err := s.db.Raw(
		`SELECT COUNT(*) FROM information_schema.table_constraints WHERE constraint_name = ?`,
		name,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
