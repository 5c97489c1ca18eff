package repository

import (
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
)

// PlannerRepository groups the accessor for every canonical key.
type PlannerRepository struct {
	Tasks         *Collection[models.Task]
	Exams         *Collection[models.Exam]
	Users         *Collection[models.User]
	ImportantDays *Collection[string]
	Notifications *Collection[models.NotificationLogEntry]
	CurrentUser   *Document[models.User]
	Settings      *Document[models.Settings]
}

// NewPlannerRepository builds accessors over kv.
func NewPlannerRepository(kv KV, logger *zap.Logger, recorder AccessRecorder) *PlannerRepository {
	return &PlannerRepository{
		Tasks:         NewCollection[models.Task](kv, models.KeyTasks, logger, recorder),
		Exams:         NewCollection[models.Exam](kv, models.KeyExams, logger, recorder),
		Users:         NewCollection[models.User](kv, models.KeyUsers, logger, recorder),
		ImportantDays: NewCollection[string](kv, models.KeyImportantDays, logger, recorder),
		Notifications: NewCollection[models.NotificationLogEntry](kv, models.KeyNotifications, logger, recorder),
		CurrentUser:   NewDocument[models.User](kv, models.KeyCurrentUser, logger, recorder),
		Settings:      NewDocument[models.Settings](kv, models.KeySettings, logger, recorder),
	}
}
