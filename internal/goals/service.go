package goals

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"goal-tracker-backend/internal/apperr"
	"goal-tracker-backend/internal/progress"
)

const (
	msgNameRequired   = "Goal name is required and must be at least 1 character long"
	msgTypeRequired   = "Goal type is required and must be at least 1 character long"
	msgTargetRequired = "Target value is required and must be a positive number"
	msgIDRequired     = "Goal ID is required"
	msgGoalNotFound   = "Goal not found"
	msgUserNotFound   = "User not found"

	// maxIDAttempts bounds the id bump loop on same-millisecond creates.
	maxIDAttempts = 64
)

// OwnerChecker reports whether a user exists.
type OwnerChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo   Repository
	owners OwnerChecker
	now    func() time.Time
}

func NewService(repo Repository, owners OwnerChecker) *Service {
	return &Service{repo: repo, owners: owners, now: time.Now}
}

// normalize trims the text fields and validates the result.
func normalize(s Input) (Input, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.GoalType = strings.TrimSpace(s.GoalType)

	if s.Name == "" {
		return s, apperr.Validation(msgNameRequired)
	}
	if s.GoalType == "" {
		return s, apperr.Validation(msgTypeRequired)
	}
	if !(s.TargetValue > 0) || math.IsInf(s.TargetValue, 0) {
		return s, apperr.Validation(msgTargetRequired)
	}

	s.StartDate = trimDate(s.StartDate)
	s.EndDate = trimDate(s.EndDate)
	return s, nil
}

func trimDate(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}

func requireID(goalID string) (string, error) {
	goalID = strings.TrimSpace(goalID)
	if goalID == "" {
		return "", apperr.Validation(msgIDRequired)
	}
	return goalID, nil
}

// Create stores a new goal for ownerID with zeroed progress. Its id is the
// creation time in Unix milliseconds, bumped until unused by the owner.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*Goal, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	ok, err := s.owners.Exists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound(msgUserNotFound)
	}

	now := s.now()
	g := &Goal{
		Name:        in.Name,
		GoalType:    in.GoalType,
		TargetValue: in.TargetValue,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Progress:    progress.New(now),
	}

	id := now.UnixMilli()
	for range maxIDAttempts {
		g.ID = strconv.FormatInt(id, 10)

		err := s.repo.Create(ctx, ownerID, g)
		switch {
		case err == nil:
			return g, nil
		case errors.Is(err, ErrDuplicateID):
			id++
		case errors.Is(err, ErrOwnerNotFound):
			return nil, apperr.Wrap(apperr.KindNotFound, msgUserNotFound, err)
		default:
			return nil, err
		}
	}
	return nil, errors.New("no free goal id after retries")
}

// Update replaces the definition fields of a goal and keeps its id and
// progress. Concurrent updates of one goal are last-write-wins.
func (s *Service) Update(ctx context.Context, ownerID, goalID string, in Input) (*Goal, error) {
	goalID, err := requireID(goalID)
	if err != nil {
		return nil, err
	}
	in, err = normalize(in)
	if err != nil {
		return nil, err
	}

	g, err := s.get(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	g.Name = in.Name
	g.GoalType = in.GoalType
	g.TargetValue = in.TargetValue
	g.StartDate = in.StartDate
	g.EndDate = in.EndDate

	if err := s.repo.Update(ctx, ownerID, g); err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// UpdateProgress records value as the goal's current progress.
func (s *Service) UpdateProgress(ctx context.Context, ownerID, goalID string, value float64) (*Goal, error) {
	goalID, err := requireID(goalID)
	if err != nil {
		return nil, err
	}

	g, err := s.get(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	p, err := progress.ApplyUpdate(g.Progress, value, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetProgress(ctx, ownerID, goalID, p); err != nil {
		return nil, notFound(err)
	}

	g.Progress = p
	return g, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, goalID string) error {
	goalID, err := requireID(goalID)
	if err != nil {
		return err
	}
	return notFound(s.repo.Delete(ctx, ownerID, goalID))
}

func (s *Service) Get(ctx context.Context, ownerID, goalID string) (*Goal, error) {
	goalID, err := requireID(goalID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, ownerID, goalID)
}

// List returns the owner's goals in creation order.
func (s *Service) List(ctx context.Context, ownerID string) ([]Goal, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) get(ctx context.Context, ownerID, goalID string) (*Goal, error) {
	g, err := s.repo.Get(ctx, ownerID, goalID)
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, msgGoalNotFound, err)
	}
	return err
}
