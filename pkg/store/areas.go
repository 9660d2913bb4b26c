package store

import (
	"context"
	"strings"

	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

func (s *Store) ListAreas(ctx context.Context) ([]models.Area, error) {
	var rows []database.Area
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, wrap("list areas", "area", "", err)
	}
	out := make([]models.Area, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Area{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (s *Store) GetArea(ctx context.Context, id string) (models.Area, error) {
	var row database.Area
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Area{}, wrap("get area", "area", id, err)
	}
	return models.Area{ID: row.ID, Name: row.Name}, nil
}

func (s *Store) CreateArea(ctx context.Context, name string) (models.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Area{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}
	row := database.Area{Name: name}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Area{}, wrap("create area", "area", "", err)
	}
	return models.Area{ID: row.ID, Name: row.Name}, nil
}

func (s *Store) UpdateArea(ctx context.Context, id, name string) (models.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Area{}, &models.ValidationError{Field: "name", Message: "name is required"}
	}
	var row database.Area
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Area{}, wrap("update area", "area", id, err)
	}
	row.Name = name
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.Area{}, wrap("update area", "area", id, err)
	}
	return models.Area{ID: row.ID, Name: row.Name}, nil
}

// DeleteArea refuses to remove an area that still has people
func (s *Store) DeleteArea(ctx context.Context, id string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&database.Person{}).Where("area_id = ?", id).Count(&n).Error; err != nil {
		return wrap("delete area", "area", id, err)
	}
	if n > 0 {
		return &models.ValidationError{Field: "id", Message: "area still has personnel"}
	}
	res := s.db.WithContext(ctx).Delete(&database.Area{}, "id = ?", id)
	if res.Error != nil {
		return wrap("delete area", "area", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "area", ID: id}
	}
	return nil
}
