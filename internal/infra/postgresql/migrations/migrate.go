package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/transitops/transit-collector/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_fetch_attempts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.FetchAttemptModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_fetch_attempts_feed_fetched ON fetch_attempts (feed_name, fetched_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.FetchAttemptModel{})
			},
		},
		{
			ID: "000002_create_trip_update_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.TripUpdateModel{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&repository.StopTimeUpdateModel{}); err != nil {
					return err
				}
				constraints := []string{
					`ALTER TABLE trip_updates ADD CONSTRAINT fk_trip_updates_attempt FOREIGN KEY (attempt_id) REFERENCES fetch_attempts (id)`,
					`ALTER TABLE stop_time_updates ADD CONSTRAINT fk_stop_time_updates_attempt FOREIGN KEY (attempt_id) REFERENCES fetch_attempts (id)`,
				}
				for _, sql := range constraints {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable(&repository.StopTimeUpdateModel{}); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&repository.TripUpdateModel{})
			},
		},
		{
			ID: "000003_create_vehicle_positions",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.VehiclePositionModel{}); err != nil {
					return err
				}
				return tx.Exec(`ALTER TABLE vehicle_positions ADD CONSTRAINT fk_vehicle_positions_attempt FOREIGN KEY (attempt_id) REFERENCES fetch_attempts (id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.VehiclePositionModel{})
			},
		},
		{
			ID: "000004_create_service_alerts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.ServiceAlertModel{}); err != nil {
					return err
				}
				return tx.Exec(`ALTER TABLE service_alerts ADD CONSTRAINT fk_service_alerts_attempt FOREIGN KEY (attempt_id) REFERENCES fetch_attempts (id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.ServiceAlertModel{})
			},
		},
		{
			ID: "000005_create_equipment_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.EquipmentOutageModel{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&repository.EquipmentUnitModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_equipment_outages_equipment_id ON equipment_outages (equipment_id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropTable(&repository.EquipmentUnitModel{}); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&repository.EquipmentOutageModel{})
			},
		},
	})

	return m.Migrate()
}
