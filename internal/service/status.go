package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	pendingNames   = []string{"Pending", "Processing"}
	cancelledNames = []string{"Cancelled", "Canceled"}
)

// StatusResolver maps a status id or name onto an order_status id.
// A zero id means the reference did not resolve.
type StatusResolver struct {
	Repo *repo.GormRepo
}

// Resolve trusts numeric references without looking them up; names are
// matched case-insensitively.
func (r *StatusResolver) Resolve(ctx context.Context, ref *transport.StatusRef) (uint, error) {
	if ref.IsZero() {
		return 0, nil
	}
	v := strings.TrimSpace(ref.Value)

	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if f < 1 || f != math.Trunc(f) || f > math.MaxUint32 {
			return 0, fmt.Errorf("%w: status id must be a positive integer", ErrValidation)
		}
		return uint(f), nil
	}

	return r.byName(ctx, v)
}

func (r *StatusResolver) ResolveDefaultPending(ctx context.Context) (uint, error) {
	return r.firstOf(ctx, pendingNames)
}

func (r *StatusResolver) ResolveCancelled(ctx context.Context) (uint, error) {
	return r.firstOf(ctx, cancelledNames)
}

func (r *StatusResolver) firstOf(ctx context.Context, names []string) (uint, error) {
	for _, name := range names {
		id, err := r.byName(ctx, name)
		if err != nil {
			return 0, err
		}
		if id != 0 {
			return id, nil
		}
	}
	return 0, nil
}

func (r *StatusResolver) byName(ctx context.Context, name string) (uint, error) {
	status, err := r.Repo.FindStatusByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, dependency("resolve status", err)
	}
	return status.ID, nil
}

// StatusService manages the status vocabulary. Names stay unique
// case-insensitively so name resolution is never ambiguous.
type StatusService struct {
	Repo *repo.GormRepo
}

func (s *StatusService) List(ctx context.Context) ([]models.OrderStatus, error) {
	statuses, err := s.Repo.ListStatuses(ctx)
	if err != nil {
		return nil, dependency("list statuses", err)
	}
	return statuses, nil
}

func (s *StatusService) Get(ctx context.Context, id uint) (*models.OrderStatus, error) {
	status, err := s.Repo.GetStatus(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: status %d", ErrNotFound, id)
		}
		return nil, dependency("get status", err)
	}
	return status, nil
}

func (s *StatusService) Create(ctx context.Context, req transport.StatusRequest) (*models.OrderStatus, error) {
	name := strings.TrimSpace(req.StatusName)
	if name == "" {
		return nil, fmt.Errorf("%w: status_name is required", ErrValidation)
	}
	if err := s.ensureFree(ctx, name, 0); err != nil {
		return nil, err
	}

	status := &models.OrderStatus{StatusName: name}
	if err := s.Repo.CreateStatus(ctx, status); err != nil {
		return nil, dependency("create status", err)
	}
	return status, nil
}

func (s *StatusService) Rename(ctx context.Context, id uint, req transport.StatusRequest) (*models.OrderStatus, error) {
	name := strings.TrimSpace(req.StatusName)
	if name == "" {
		return nil, fmt.Errorf("%w: status_name is required", ErrValidation)
	}
	if err := s.ensureFree(ctx, name, id); err != nil {
		return nil, err
	}

	status, err := s.Repo.RenameStatus(ctx, id, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: status %d", ErrNotFound, id)
		}
		return nil, dependency("rename status", err)
	}
	return status, nil
}

func (s *StatusService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteStatus(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: status %d", ErrNotFound, id)
		}
		return dependency("delete status", err)
	}
	return nil
}

// Seed inserts every name not yet present. Existing rows are left alone.
func (s *StatusService) Seed(ctx context.Context, names []string) (int, error) {
	l := logging.FromContext(ctx).With("svc", "status.seed")

	created := 0
	for _, name := range names {
		_, err := s.Create(ctx, transport.StatusRequest{StatusName: name})
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
			l.Debug("seed_skip", "status_name", name, "reason", err.Error())
		default:
			return created, err
		}
	}
	return created, nil
}

func (s *StatusService) ensureFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.Repo.FindStatusByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return dependency("check status name", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return fmt.Errorf("%w: status %q already exists", ErrConflict, existing.StatusName)
}
