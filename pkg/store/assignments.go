package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

// assignments returns the base query: people populated, oldest first so that
// later-created assignments win overlapping days when projected
func (s *Store) assignments(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&database.Assignment{}).Preload("User").Order("created_at").Order("id")
}

func (s *Store) findAssignments(op string, q *gorm.DB) ([]models.Assignment, error) {
	var rows []database.Assignment
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap(op, "assignment", "", err)
	}
	out := make([]models.Assignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAssignment(r))
	}
	return out, nil
}

func monthBounds(month time.Month, year int) (time.Time, time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, &models.ValidationError{Field: "month", Message: "month must be 1-12"}
	}
	first := models.Date(year, month, 1)
	return first, first.AddDate(0, 1, -1), nil
}

// ListAssignments returns the assignments touching any day of the month.
// An empty areaID means every area.
func (s *Store) ListAssignments(ctx context.Context, month time.Month, year int, areaID string) ([]models.Assignment, error) {
	first, last, err := monthBounds(month, year)
	if err != nil {
		return nil, err
	}
	q := s.assignments(ctx).Where("start_date <= ? AND end_date >= ?", last, first)
	if areaID != "" {
		q = q.Where("area_id = ?", areaID)
	}
	return s.findAssignments("list assignments", q)
}

func (s *Store) ListAllAssignments(ctx context.Context, areaID string) ([]models.Assignment, error) {
	q := s.assignments(ctx)
	if areaID != "" {
		q = q.Where("area_id = ?", areaID)
	}
	return s.findAssignments("list assignments", q)
}

func (s *Store) ListAssignmentsByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	return s.findAssignments("list assignments by user", s.assignments(ctx).Where("user_id = ?", userID))
}

// ListAssignmentsByDateRange returns assignments overlapping start..end inclusive
func (s *Store) ListAssignmentsByDateRange(ctx context.Context, start, end time.Time) ([]models.Assignment, error) {
	start, end = models.Day(start), models.Day(end)
	if start.After(end) {
		return nil, &models.ValidationError{Field: "endDate", Message: "startDate must not be after endDate"}
	}
	return s.findAssignments("list assignments by range", s.assignments(ctx).Where("start_date <= ? AND end_date >= ?", end, start))
}

func (s *Store) GetAssignment(ctx context.Context, id string) (models.Assignment, error) {
	var row database.Assignment
	if err := s.db.WithContext(ctx).Preload("User").First(&row, "id = ?", id).Error; err != nil {
		return models.Assignment{}, wrap("get assignment", "assignment", id, err)
	}
	return toAssignment(row), nil
}

// areaOf returns the area an assignment of person belongs to. An assignment
// always lives in its person's area; a different requested area is rejected.
func areaOf(person models.Person, requested string) (string, error) {
	if requested != "" && requested != person.AreaID {
		return "", &models.ValidationError{Field: "areaId", Message: "person " + person.ID + " does not belong to area " + requested}
	}
	return person.AreaID, nil
}

// CreateAssignment checks that the person and work type exist. The area is
// the person's area.
func (s *Store) CreateAssignment(ctx context.Context, in models.AssignmentInput) (models.Assignment, error) {
	if err := in.Validate(); err != nil {
		return models.Assignment{}, err
	}
	person, err := s.GetPerson(ctx, in.UserID)
	if err != nil {
		return models.Assignment{}, err
	}
	areaID, err := areaOf(person, in.AreaID)
	if err != nil {
		return models.Assignment{}, err
	}
	code := models.NormalizeCode(in.WorkTypeCode)
	if _, err := s.GetWorkType(ctx, code); err != nil {
		return models.Assignment{}, err
	}

	row := database.Assignment{
		UserID:       person.ID,
		AreaID:       areaID,
		WorkTypeCode: code,
		StartDate:    models.Day(in.StartDate),
		EndDate:      models.Day(in.EndDate),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Assignment{}, wrap("create assignment", "assignment", "", err)
	}
	s.log.Debug().Str("assignment", row.ID).Str("user", row.UserID).Str("code", code).Msg("assignment created")
	return s.GetAssignment(ctx, row.ID)
}

// UpdateAssignment applies the patch and validates the merged record
func (s *Store) UpdateAssignment(ctx context.Context, id string, patch models.AssignmentPatch) (models.Assignment, error) {
	if err := patch.Validate(); err != nil {
		return models.Assignment{}, err
	}
	current, err := s.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	next := patch.Apply(current)
	if err := models.CheckRange(next.StartDate, next.EndDate); err != nil {
		return models.Assignment{}, err
	}
	if next.UserID != current.UserID {
		person, err := s.GetPerson(ctx, next.UserID)
		if err != nil {
			return models.Assignment{}, err
		}
		next.AreaID = person.AreaID
	}
	if next.WorkTypeCode != current.WorkTypeCode {
		if _, err := s.GetWorkType(ctx, next.WorkTypeCode); err != nil {
			return models.Assignment{}, err
		}
	}

	err = s.db.WithContext(ctx).Model(&database.Assignment{}).Where("id = ?", id).Updates(map[string]any{
		"user_id":        next.UserID,
		"area_id":        next.AreaID,
		"work_type_code": next.WorkTypeCode,
		"start_date":     next.StartDate,
		"end_date":       next.EndDate,
	}).Error
	if err != nil {
		return models.Assignment{}, wrap("update assignment", "assignment", id, err)
	}
	return s.GetAssignment(ctx, id)
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&database.Assignment{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete assignment", "assignment", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "assignment", ID: id}
	}
	return nil
}

// DeleteAssignmentsByUserAndMonth removes every assignment of the user that
// touches the month
func (s *Store) DeleteAssignmentsByUserAndMonth(ctx context.Context, userID string, month time.Month, year int) error {
	first, last, err := monthBounds(month, year)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, last, first).
		Delete(&database.Assignment{})
	if res.Error != nil {
		return wrap("delete assignments", "assignment", "", res.Error)
	}
	s.log.Debug().Str("user", userID).Int64("deleted", res.RowsAffected).Msg("month cleared")
	return nil
}
