package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
	"github.com/spec-kit/property-notifier/internal/repository"
)

// UnassignedTechnician is shown in digests for inspections nobody owns.
const UnassignedTechnician = "Unassigned"

// OverdueSummary reports one overdue inspection run.
type OverdueSummary struct {
	Processed int `json:"processed"`
	Notified  int `json:"notified"`
}

// OverdueNotifier is the part of NotificationService used by the overdue run.
type OverdueNotifier interface {
	NotifyInspectionOverdue(ctx context.Context, technicianID string, inspection domain.InspectionRef, daysOverdue int) (*domain.Notification, error)
	SendOverdueDigest(ctx context.Context, manager domain.UserSummary, items []email.DigestItem) error
}

// OverdueService finds late inspections and notifies technicians and managers.
type OverdueService struct {
	inspections repository.InspectionRepository
	notifier    OverdueNotifier
	logger      *zap.Logger
	frontendURL string
	location    *time.Location
	now         func() time.Time
}

// OverdueDependencies bundles collaborators for the overdue service.
type OverdueDependencies struct {
	InspectionRepo repository.InspectionRepository
	Notifier       OverdueNotifier
	Logger         *zap.Logger
	FrontendURL    string
	Location       *time.Location
}

// NewOverdueService creates the service.
func NewOverdueService(deps OverdueDependencies) *OverdueService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &OverdueService{
		inspections: deps.InspectionRepo,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		frontendURL: deps.FrontendURL,
		location:    loc,
		now:         time.Now,
	}
}

type managerDigest struct {
	manager     domain.UserSummary
	inspections []domain.Inspection
}

type itemResult struct {
	id  string
	err error
}

// ProcessOverdueInspections notifies the technician of every overdue
// inspection and sends each property manager a single digest. A failure for
// one technician or manager never stops the rest of the batch.
func (s *OverdueService) ProcessOverdueInspections(ctx context.Context) (OverdueSummary, error) {
	now := s.now()

	inspections, err := s.inspections.ListOverdue(ctx, now)
	if err != nil {
		s.logger.Error("failed to load overdue inspections", zap.Error(err), zap.Stack("stack"))
		return OverdueSummary{}, fmt.Errorf("list overdue inspections: %w", err)
	}
	if len(inspections) == 0 {
		s.logger.Info("no overdue inspections")
		return OverdueSummary{}, nil
	}

	digests := make(map[string]*managerDigest)
	var order []string
	results := make([]itemResult, 0, len(inspections))

	for _, inspection := range inspections {
		if inspection.AssignedTo != nil {
			_, err := s.notifier.NotifyInspectionOverdue(ctx, inspection.AssignedTo.ID, inspection.Ref(), inspection.DaysOverdue(now))
			results = append(results, itemResult{id: inspection.ID, err: err})
			if err != nil {
				s.logger.Error("failed to notify technician of overdue inspection",
					zap.String("inspection_id", inspection.ID),
					zap.String("technician_id", inspection.AssignedTo.ID),
					zap.Error(err))
			}
		}

		manager := inspection.Property.Manager
		if manager == nil {
			continue
		}
		group, ok := digests[manager.ID]
		if !ok {
			group = &managerDigest{manager: *manager}
			digests[manager.ID] = group
			order = append(order, manager.ID)
		}
		group.inspections = append(group.inspections, inspection)
	}

	notified := 0
	for _, managerID := range order {
		group := digests[managerID]
		items := make([]email.DigestItem, 0, len(group.inspections))
		for _, inspection := range group.inspections {
			items = append(items, s.digestItem(inspection, now))
		}

		if err := s.notifier.SendOverdueDigest(ctx, group.manager, items); err != nil {
			s.logger.Error("failed to send overdue digest",
				zap.String("manager_id", managerID),
				zap.Int("inspections", len(items)),
				zap.Error(err))
			continue
		}
		notified++
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}

	summary := OverdueSummary{Processed: len(inspections), Notified: notified}
	s.logger.Info("overdue inspections processed",
		zap.Int("processed", summary.Processed),
		zap.Int("technician_notices", len(results)-failed),
		zap.Int("technician_failures", failed),
		zap.Int("managers", len(order)),
		zap.Int("digests_sent", notified))
	return summary, nil
}

func (s *OverdueService) digestItem(inspection domain.Inspection, now time.Time) email.DigestItem {
	item := email.DigestItem{
		Title:          inspection.Title,
		PropertyName:   inspection.Property.Name,
		ScheduledDate:  inspection.ScheduledDate.In(s.location).Format("Jan 2, 2006"),
		DaysOverdue:    inspection.DaysOverdue(now),
		TechnicianName: UnassignedTechnician,
		Link:           s.frontendURL + "/inspections/" + inspection.ID,
	}
	if inspection.Unit != nil {
		item.UnitNumber = inspection.Unit.UnitNumber
	}
	if inspection.AssignedTo != nil {
		item.TechnicianName = inspection.AssignedTo.DisplayName()
	}
	return item
}
