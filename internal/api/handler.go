package api

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/engine"
	"github.com/shaiso/Outreach/internal/repo"
)

// FlowStore — хранилище графов.
type FlowStore interface {
	Save(ctx context.Context, flow *domain.Flow) error
	Get(ctx context.Context, id string) (*domain.Flow, error)
}

// ListStore — хранилище списков лидов.
type ListStore interface {
	List(ctx context.Context) ([]domain.LeadList, error)
	Create(ctx context.Context, list *domain.LeadList) error
}

// EmailStore — хранилище запланированных писем.
type EmailStore interface {
	Create(ctx context.Context, email *domain.ScheduledEmail) error
	List(ctx context.Context, filter repo.EmailFilter) ([]domain.ScheduledEmail, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	flows    FlowStore
	lists    ListStore
	emails   EmailStore
	planner  *engine.Planner
	validate *validator.Validate
	origins  []string
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Flows   FlowStore
	Lists   ListStore
	Emails  EmailStore
	Planner *engine.Planner // опционально; по умолчанию engine.NewPlanner()

	// AllowedOrigins — источники, которым разрешён CORS. Пусто — "*".
	AllowedOrigins []string

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	planner := cfg.Planner
	if planner == nil {
		planner = engine.NewPlanner()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		flows:    cfg.Flows,
		lists:    cfg.Lists,
		emails:   cfg.Emails,
		planner:  planner,
		validate: newValidator(),
		origins:  cfg.AllowedOrigins,
		logger:   logger,
	}
}
