package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

// ListPeople returns personnel ordered by name, optionally limited to one area
func (s *Store) ListPeople(ctx context.Context, areaID string) ([]models.Person, error) {
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if areaID != "" {
		q = q.Where("area_id = ?", areaID)
	}
	var rows []database.Person
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list personnel", "person", "", err)
	}
	out := make([]models.Person, 0, len(rows))
	for _, r := range rows {
		out = append(out, toPerson(r))
	}
	return out, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (models.Person, error) {
	var row database.Person
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Person{}, wrap("get person", "person", id, err)
	}
	return toPerson(row), nil
}

// CreatePerson stores the name upper-cased, the way the roster displays it
func (s *Store) CreatePerson(ctx context.Context, p models.Person) (models.Person, error) {
	name := strings.ToUpper(strings.TrimSpace(p.Name))
	if name == "" {
		return models.Person{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}
	if p.AreaID != "" {
		if _, err := s.GetArea(ctx, p.AreaID); err != nil {
			return models.Person{}, err
		}
	}
	row := database.Person{Name: name, AreaID: p.AreaID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Person{}, wrap("create person", "person", "", err)
	}
	return toPerson(row), nil
}

func (s *Store) UpdatePerson(ctx context.Context, id string, p models.Person) (models.Person, error) {
	var row database.Person
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Person{}, wrap("update person", "person", id, err)
	}
	if name := strings.ToUpper(strings.TrimSpace(p.Name)); name != "" {
		row.Name = name
	}
	if p.AreaID != "" && p.AreaID != row.AreaID {
		if _, err := s.GetArea(ctx, p.AreaID); err != nil {
			return models.Person{}, err
		}
		row.AreaID = p.AreaID
	}
	// assignments follow their person into the new area
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return tx.Model(&database.Assignment{}).Where("user_id = ? AND area_id <> ?", row.ID, row.AreaID).
			Update("area_id", row.AreaID).Error
	})
	if err != nil {
		return models.Person{}, wrap("update person", "person", id, err)
	}
	return toPerson(row), nil
}

// DeletePerson refuses to remove someone who still has assignments
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&database.Assignment{}).Where("user_id = ?", id).Count(&n).Error; err != nil {
		return wrap("delete person", "person", id, err)
	}
	if n > 0 {
		return &models.ValidationError{Field: "id", Message: "person still has assignments"}
	}
	res := s.db.WithContext(ctx).Delete(&database.Person{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete person", "person", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "person", ID: id}
	}
	return nil
}
