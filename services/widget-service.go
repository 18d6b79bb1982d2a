package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

// Role-keyed default dashboard layouts, applied on first access and on
// reset.
var widgetTemplates = map[models.UserRole][]widgetTemplate{
	models.RoleAdmin: {
		{Type: "project_summary", Title: "Project Summary", Size: models.WidgetLarge},
		{Type: "budget_overview", Title: "Budget Overview", Size: models.WidgetMedium},
		{Type: "team_workload", Title: "Team Workload", Size: models.WidgetMedium},
		{Type: "activity_feed", Title: "Recent Activity", Size: models.WidgetSmall},
	},
	models.RoleTeam: {
		{Type: "my_tasks", Title: "My Tasks", Size: models.WidgetLarge},
		{Type: "time_tracking", Title: "Time Tracking", Size: models.WidgetMedium},
		{Type: "activity_feed", Title: "Recent Activity", Size: models.WidgetSmall},
	},
	models.RoleClient: {
		{Type: "project_summary", Title: "Project Summary", Size: models.WidgetLarge},
		{Type: "budget_overview", Title: "Budget Overview", Size: models.WidgetMedium},
	},
	models.RoleUser: {
		{Type: "my_tasks", Title: "My Tasks", Size: models.WidgetLarge},
	},
}

type widgetTemplate struct {
	Type  string
	Title string
	Size  models.WidgetSize
}

// WidgetPosition is one requested move in a reposition call.
type WidgetPosition struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// WidgetService owns per-user dashboard layouts. Every mutation for a
// given user runs under that user's lock so the positional invariant
// (positions are exactly 0..n-1, no duplicates) holds at every return.
// Mutations for different users do not contend.
type WidgetService struct {
	repo   repositories.WidgetConfigRepository
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewWidgetService(repo repositories.WidgetConfigRepository, logger *logrus.Logger) *WidgetService {
	return &WidgetService{
		repo:   repo,
		logger: logger,
		locks:  make(map[primitive.ObjectID]*sync.Mutex),
	}
}

func (s *WidgetService) userLock(userID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// GetOrCreate returns the user's config, building it from the role
// template on first access.
func (s *WidgetService) GetOrCreate(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.WidgetConfig, error) {
	if userID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "user id is required"}
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.getOrCreateLocked(ctx, userID, role)
}

func (s *WidgetService) getOrCreateLocked(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.WidgetConfig, error) {
	cfg, err := s.repo.GetByUser(ctx, userID)
	if err == nil {
		return cfg, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.WidgetConfig{
		UserID:  userID,
		Widgets: widgetsFromTemplate(role),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Event ID: WIDGET_CONFIG_CREATED, Description: Created %s dashboard layout for user %s.", role, userID.Hex())
	return created, nil
}

// Add appends a widget at position len(widgets).
func (s *WidgetService) Add(ctx context.Context, userID primitive.ObjectID, widgetType, title string, size models.WidgetSize) (*models.Widget, error) {
	if widgetType == "" {
		return nil, &repositories.ValidationError{Reason: "widget type is required"}
	}
	if title == "" {
		title = widgetType
	}
	if size == "" {
		size = models.WidgetMedium
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.getOrCreateLocked(ctx, userID, models.RoleUser)
	if err != nil {
		return nil, err
	}

	widget := models.Widget{
		ID:       uuid.New().String(),
		Type:     widgetType,
		Title:    title,
		Size:     size,
		Position: len(cfg.Widgets),
		Settings: map[string]interface{}{},
	}
	cfg.Widgets = append(cfg.Widgets, widget)

	if _, err := s.repo.Replace(ctx, cfg); err != nil {
		return nil, err
	}
	return &widget, nil
}

// Remove deletes the widget and renumbers the remainder to 0..n-1 in
// their existing relative order.
func (s *WidgetService) Remove(ctx context.Context, userID primitive.ObjectID, widgetID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}

	remaining := make([]models.Widget, 0, len(cfg.Widgets))
	found := false
	for _, w := range cfg.Widgets {
		if w.ID == widgetID {
			found = true
			continue
		}
		remaining = append(remaining, w)
	}
	if !found {
		return &repositories.NotFoundError{Entity: "widget", ID: widgetID}
	}

	cfg.Widgets = normalizePositions(remaining)
	_, err = s.repo.Replace(ctx, cfg)
	return err
}

// Reposition applies the requested positions and then normalizes:
// widgets are sorted by requested position (ties broken by widget id)
// and reassigned 0..n-1, so collisions resolve deterministically.
func (s *WidgetService) Reposition(ctx context.Context, userID primitive.ObjectID, moves []WidgetPosition) (*models.WidgetConfig, error) {
	if len(moves) == 0 {
		return nil, &repositories.ValidationError{Reason: "at least one position is required"}
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(cfg.Widgets))
	for i, w := range cfg.Widgets {
		byID[w.ID] = i
	}
	for _, move := range moves {
		i, ok := byID[move.ID]
		if !ok {
			return nil, &repositories.NotFoundError{Entity: "widget", ID: move.ID}
		}
		cfg.Widgets[i].Position = move.Position
	}

	cfg.Widgets = normalizePositions(cfg.Widgets)

	return s.repo.Replace(ctx, cfg)
}

// UpdateSettings shallow-merges patch into the widget's settings map.
func (s *WidgetService) UpdateSettings(ctx context.Context, userID primitive.ObjectID, widgetID string, patch map[string]interface{}) (*models.Widget, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cfg.Widgets {
		if cfg.Widgets[i].ID != widgetID {
			continue
		}
		if cfg.Widgets[i].Settings == nil {
			cfg.Widgets[i].Settings = map[string]interface{}{}
		}
		for k, v := range patch {
			cfg.Widgets[i].Settings[k] = v
		}
		if _, err := s.repo.Replace(ctx, cfg); err != nil {
			return nil, err
		}
		widget := cfg.Widgets[i]
		return &widget, nil
	}
	return nil, &repositories.NotFoundError{Entity: "widget", ID: widgetID}
}

// Reset replaces the whole config with the role default.
func (s *WidgetService) Reset(ctx context.Context, userID primitive.ObjectID, role models.UserRole) (*models.WidgetConfig, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.getOrCreateLocked(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	cfg.Widgets = widgetsFromTemplate(role)
	return s.repo.Replace(ctx, cfg)
}

// normalizePositions sorts by requested position (ties by widget id) and
// reassigns a contiguous 0..n-1 sequence.
func normalizePositions(widgets []models.Widget) []models.Widget {
	sort.SliceStable(widgets, func(i, j int) bool {
		if widgets[i].Position != widgets[j].Position {
			return widgets[i].Position < widgets[j].Position
		}
		return widgets[i].ID < widgets[j].ID
	})
	for i := range widgets {
		widgets[i].Position = i
	}
	return widgets
}

func widgetsFromTemplate(role models.UserRole) []models.Widget {
	template, ok := widgetTemplates[role]
	if !ok {
		template = widgetTemplates[models.RoleUser]
	}

	widgets := make([]models.Widget, len(template))
	for i, t := range template {
		widgets[i] = models.Widget{
			ID:       uuid.New().String(),
			Type:     t.Type,
			Title:    t.Title,
			Size:     t.Size,
			Position: i,
			Settings: map[string]interface{}{},
		}
	}
	return widgets
}
