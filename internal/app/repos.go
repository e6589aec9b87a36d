package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/repos"
)

type Repos struct {
	User             repos.UserRepo
	UserToken        repos.UserTokenRepo
	ClientProfile    repos.ClientProfileRepo
	Rubric           repos.RubricRepo
	Section          repos.SectionRepo
	Enrollment       repos.EnrollmentRepo
	Assignment       repos.AssignmentRepo
	AssignmentClient repos.AssignmentClientRepo
	Session          repos.SessionRepo
	Message          repos.MessageRepo
	AICallLog        repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserToken:        repos.NewUserTokenRepo(db, log),
		ClientProfile:    repos.NewClientProfileRepo(db, log),
		Rubric:           repos.NewRubricRepo(db, log),
		Section:          repos.NewSectionRepo(db, log),
		Enrollment:       repos.NewEnrollmentRepo(db, log),
		Assignment:       repos.NewAssignmentRepo(db, log),
		AssignmentClient: repos.NewAssignmentClientRepo(db, log),
		Session:          repos.NewSessionRepo(db, log),
		Message:          repos.NewMessageRepo(db, log),
		AICallLog:        repos.NewAICallLogRepo(db, log),
	}
}
