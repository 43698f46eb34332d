package access

import (
	"TuneRelay/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

// GormBackend stores approval state in the shared relational database.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend builds a Backend over the given database handle.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// RegisterOrUpdate creates the user as pending, or refreshes the
// display fields of an existing record without touching its approval.
func (b *GormBackend) RegisterOrUpdate(telegramID int64, fullName, userName string) (uint64, error) {
	var existing model.User
	err := b.db.Where("telegram_id = ?", telegramID).First(&existing).Error
	if err == nil {
		if existing.FullName != fullName || existing.UserName != userName {
			updateErr := b.db.Model(&existing).Updates(map[string]interface{}{
				"full_name": fullName,
				"user_name": userName,
			}).Error
			if updateErr != nil {
				return 0, updateErr
			}
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	user := model.User{
		TelegramID: telegramID,
		FullName:   fullName,
		UserName:   userName,
		Approval:   model.ApprovalPending,
	}
	if err := b.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Lookup returns the user record for a telegram identity, or nil when
// no such user exists.
func (b *GormBackend) Lookup(telegramID int64) (*model.User, error) {
	var user model.User
	err := b.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetApproval applies an admin decision. Repeating a decision is a
// no-op success; false means the identity is unknown.
func (b *GormBackend) SetApproval(telegramID int64, state string) (bool, error) {
	var user model.User
	err := b.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if user.Approval == state {
		return true, nil
	}

	updates := map[string]interface{}{"approval": state}
	if state == model.ApprovalApproved {
		now := time.Now()
		updates["approved_at"] = &now
	}
	if err := b.db.Model(&user).Updates(updates).Error; err != nil {
		return false, err
	}
	return true, nil
}
