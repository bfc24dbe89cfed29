package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clinicadelvalle/agenda-api/config"
	"github.com/clinicadelvalle/agenda-api/internal/domain"
	"github.com/clinicadelvalle/agenda-api/internal/domain/appointment"
	"github.com/clinicadelvalle/agenda-api/internal/domain/clinicalrecord"
	"github.com/clinicadelvalle/agenda-api/internal/domain/doctor"
	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if cfg.StatementTimeout > 0 {
		ms := cfg.StatementTimeout.Milliseconds()
		if err := db.Exec(fmt.Sprintf("SET statement_timeout = %d", ms)).Error; err != nil {
			return nil, fmt.Errorf("setting statement timeout: %w", err)
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinical", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&patient.Patient{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&clinicalrecord.ClinicalRecord{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// The booking arbiter: at most one live appointment per
		// (doctor, date, time). Cancelled rows are excluded so a freed
		// slot can be rebooked. Concurrent inserts for the same slot make
		// exactly one winner; the loser sees a 23505 on this constraint.
		{
			name:  "uq_appointments_doctor_slot",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_appointments_doctor_slot ON clinical.appointments (doctor_id, date, time) WHERE status <> 'cancelled'`,
		},
		{
			name:  "idx_appointments_doctor_date",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON clinical.appointments (doctor_id, date) WHERE status <> 'cancelled'`,
		},
		{
			name:  "idx_appointments_patient_date",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_patient_date ON clinical.appointments (patient_id, date)`,
		},
		{
			name:  "idx_records_patient_created",
			query: `CREATE INDEX IF NOT EXISTS idx_records_patient_created ON clinical.records (patient_id, created_at DESC)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
