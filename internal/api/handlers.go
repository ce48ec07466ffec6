package api

import (
	"context"

	"github.com/vytor/mriflash/internal/images"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/services"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	QuizService   services.QuizService
	Images        *images.Cache
	DB            Pinger
	DefaultLength models.SessionLength
}
