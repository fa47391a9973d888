// Package audit keeps a log of the actions taken through the dashboard.
// The HR API owns the records themselves; this log only answers "who
// pressed what, when" for administrators.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kola-hr/kola/internal/auth"
)

// ErrDisabled is returned when no database is configured.
var ErrDisabled = errors.New("audit: log not configured")

const (
	defaultPageSize = 20
	maxPageSize     = 50
	maxExportRows   = 5000
)

// Repository stores entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Window(ctx context.Context, params WindowParams) ([]Entry, error)
}

// Service records and reads the audit log. A nil *Service is a disabled
// log: Record is a no-op and reads return ErrDisabled.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Enabled reports whether entries are persisted.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores entry. The actor and company default to the signed-in user.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if !s.Enabled() {
		return nil
	}
	if user := auth.UserFromContext(ctx); user != nil {
		if entry.ActorID == "" {
			entry.ActorID = user.ID
		}
		if entry.ActorEmail == "" {
			entry.ActorEmail = user.Email
		}
		if entry.CompanyID == "" {
			entry.CompanyID = user.CompanyID
		}
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("audit: entry requires action/entity/entity_id")
	}
	if entry.At.IsZero() {
		entry.At = s.now().UTC()
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("audit: record %s: %w", entry.Action, err)
	}
	return nil
}

// Timeline returns one page of entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if !s.Enabled() {
		return Result{}, ErrDisabled
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	rows, err := s.repo.Window(ctx, WindowParams{
		CompanyID: filters.CompanyID,
		From:      filters.From,
		To:        filters.To,
		Actor:     filters.Actor,
		Action:    filters.Action,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize + 1,
	})
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every entry matching filters, capped.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	return s.repo.Window(ctx, WindowParams{
		CompanyID: filters.CompanyID,
		From:      filters.From,
		To:        filters.To,
		Actor:     filters.Actor,
		Action:    filters.Action,
		Limit:     maxExportRows,
	})
}
