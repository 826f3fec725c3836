package database

import (
	"github.com/chachabrian/staybook-backend/internal/models"
	"gorm.io/gorm"
)

// constraint is raw DDL gorm tags cannot express.
type constraint struct {
	table string
	name  string
	ddl   string
}

var constraints = []constraint{
	{
		table: "bookings",
		name:  "bookings_dates_check",
		ddl:   `ALTER TABLE bookings ADD CONSTRAINT bookings_dates_check CHECK (check_in < check_out)`,
	},
	{
		table: "bookings",
		name:  "bookings_total_price_check",
		ddl:   `ALTER TABLE bookings ADD CONSTRAINT bookings_total_price_check CHECK (total_price >= 0)`,
	},
	{
		table: "bookings",
		name:  "bookings_status_check",
		ddl:   `ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled'))`,
	},
	{
		table: "bookings",
		name:  "bookings_payment_status_check",
		ddl:   `ALTER TABLE bookings ADD CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('pending', 'completed', 'failed', 'refunded'))`,
	},
	{
		// Two active bookings of one house may never share a night.
		table: "bookings",
		name:  "bookings_no_overlap",
		ddl: `ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (house_id WITH =, tstzrange(check_in, check_out, '[)') WITH &&)
			WHERE (status IN ('pending', 'confirmed'))`,
	},
	{
		table: "houses",
		name:  "houses_price_check",
		ddl:   `ALTER TABLE houses ADD CONSTRAINT houses_price_check CHECK (price > 0)`,
	},
	{
		table: "users",
		name:  "users_role_check",
		ddl:   `ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'admin'))`,
	},
}

func RunMigrations(db *gorm.DB) error {
	// btree_gist lets the exclusion constraint compare house_id with =.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.House{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	for _, c := range constraints {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM pg_constraint
				WHERE conrelid = ?::regclass
				AND conname = ?
			)`, c.table, c.name).Scan(&exists).Error
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := db.Exec(c.ddl).Error; err != nil {
			return err
		}
	}

	return nil
}

// Truncate removes every row, used by the seeder.
func Truncate(db *gorm.DB) error {
	return db.Exec(`TRUNCATE TABLE bookings, houses, users RESTART IDENTITY CASCADE`).Error
}
