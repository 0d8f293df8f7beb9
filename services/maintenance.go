// services/maintenance.go - background housekeeping
package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"pollquest/models"

	"gorm.io/gorm"
)

// MaintenanceService handles periodic housekeeping: deactivating expired
// quests and pruning old activity-sync rows.
type MaintenanceService struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

var maintenanceService *MaintenanceService

// InitMaintenanceService initializes the singleton maintenance service.
func InitMaintenanceService(db *gorm.DB) {
	interval := time.Duration(getEnvInt("MAINTENANCE_INTERVAL_MINUTES", 60)) * time.Minute
	maintenanceService = &MaintenanceService{
		db:       db,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// GetMaintenanceService returns the initialized maintenance service.
func GetMaintenanceService() *MaintenanceService {
	return maintenanceService
}

// Start launches the background worker.
func (s *MaintenanceService) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()
	log.Printf("🧹 Maintenance service started (every %s)", s.interval)
}

// Stop shuts the worker down and waits for it to exit.
func (s *MaintenanceService) Stop() {
	close(s.stop)
	<-s.done
	log.Println("Maintenance service stopped")
}

func (s *MaintenanceService) runOnce() {
	if n, err := s.DeactivateExpiredQuests(); err != nil {
		log.Printf("Error deactivating expired quests: %v", err)
	} else if n > 0 {
		log.Printf("✅ Deactivated %d expired quests", n)
	}

	if n, err := s.PruneSyncRecords(); err != nil {
		log.Printf("Error pruning sync records: %v", err)
	} else if n > 0 {
		log.Printf("✅ Pruned %d old activity-sync records", n)
	}
}

// DeactivateExpiredQuests flips is_active off for quests past their end date.
func (s *MaintenanceService) DeactivateExpiredQuests() (int64, error) {
	result := s.db.Model(&models.Quest{}).
		Where("is_active = ? AND ends_at IS NOT NULL AND ends_at < ?", true, time.Now().UTC()).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// PruneSyncRecords deletes audit rows older than the retention window.
// Disabled by default: the audit rows back the all-time aggregates, so
// enabling retention trades storage for all-time quest accuracy.
func (s *MaintenanceService) PruneSyncRecords() (int64, error) {
	retentionDays := getEnvInt("SYNC_RETENTION_DAYS", 0)
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivitySyncRecord{})
	return result.RowsAffected, result.Error
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}
