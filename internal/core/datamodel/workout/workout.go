package workout

import "time"

type Workout struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	Name        string     `gorm:"column:name;not null"`
	Notes       string     `gorm:"column:notes"`
	DurationMin int        `gorm:"column:duration_min"`
	PerformedAt *time.Time `gorm:"column:performed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Workout) TableName() string {
	return "workouts"
}
