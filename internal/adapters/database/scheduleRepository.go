package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"postpilot/internal/config"
	"postpilot/internal/core/schedule"
)

type ScheduleRepositoryDatabase struct{}

func NewScheduleRepositoryDatabase() *ScheduleRepositoryDatabase {
	return &ScheduleRepositoryDatabase{}
}

func (repo *ScheduleRepositoryDatabase) Create(ctx context.Context, rec *schedule.ScheduleRecord) (*schedule.ScheduleRecord, error) {
	if err := config.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (repo *ScheduleRepositoryDatabase) FindByID(ctx context.Context, id string) (*schedule.ScheduleRecord, error) {
	var rec schedule.ScheduleRecord
	if err := config.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schedule.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (repo *ScheduleRepositoryDatabase) SetRegistered(ctx context.Context, id string, messageID string) error {
	return config.DB.WithContext(ctx).Model(&schedule.ScheduleRecord{}).
		Where("id = ?", id).
		Update("external_message_id", messageID).Error
}

func (repo *ScheduleRepositoryDatabase) MarkRegistrationFailed(ctx context.Context, id string, errMsg string) error {
	return config.DB.WithContext(ctx).Model(&schedule.ScheduleRecord{}).
		Where("id = ? AND status = ?", id, schedule.StatusScheduled).
		Updates(map[string]interface{}{"status": schedule.StatusFailed, "error_message": errMsg}).Error
}

// ClaimPosting is the duplicate-delivery guard: the status predicate makes
// the check-then-transition a single conditional UPDATE, so a replayed job
// observes zero affected rows instead of racing a read-modify-write.
func (repo *ScheduleRepositoryDatabase) ClaimPosting(ctx context.Context, id string) (bool, error) {
	res := config.DB.WithContext(ctx).Model(&schedule.ScheduleRecord{}).
		Where("id = ? AND status = ?", id, schedule.StatusScheduled).
		Update("status", schedule.StatusPosting)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (repo *ScheduleRepositoryDatabase) CompletePosted(ctx context.Context, id string) error {
	return config.DB.WithContext(ctx).Model(&schedule.ScheduleRecord{}).
		Where("id = ? AND status = ?", id, schedule.StatusPosting).
		Update("status", schedule.StatusPosted).Error
}

func (repo *ScheduleRepositoryDatabase) CompleteFailed(ctx context.Context, id string, errMsg string) error {
	return config.DB.WithContext(ctx).Model(&schedule.ScheduleRecord{}).
		Where("id = ? AND status = ?", id, schedule.StatusPosting).
		Updates(map[string]interface{}{"status": schedule.StatusFailed, "error_message": errMsg}).Error
}
