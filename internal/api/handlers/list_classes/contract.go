package list_classes

import (
	"context"

	"github.com/m04kA/GYM-ClassService/internal/service/classes/models"
)

type ClassService interface {
	ListInstances(ctx context.Context, req *models.GetInstancesRequest) (*models.InstanceListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
