package store

import (
	"context"
	"regexp"
	"strings"

	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

var (
	codePattern  = regexp.MustCompile(`^[A-Z0-9]{1,16}$`)
	colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func toWorkType(w database.WorkType) models.WorkType {
	return models.WorkType{Code: w.Code, Label: w.Label, Color: w.Color}
}

func validateWorkType(wt models.WorkType) error {
	if !codePattern.MatchString(wt.Code) {
		return &models.ValidationError{Field: "code", Message: "code must be 1-16 letters or digits"}
	}
	if strings.TrimSpace(wt.Label) == "" {
		return &models.ValidationError{Field: "label", Message: "label is required"}
	}
	if !colorPattern.MatchString(wt.Color) {
		return &models.ValidationError{Field: "color", Message: "color must be a hex value like #4caf50"}
	}
	return nil
}

func (s *Store) ListWorkTypes(ctx context.Context) ([]models.WorkType, error) {
	var rows []database.WorkType
	if err := s.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, wrap("list work types", "work type", "", err)
	}
	out := make([]models.WorkType, 0, len(rows))
	for _, r := range rows {
		out = append(out, toWorkType(r))
	}
	return out, nil
}

func (s *Store) GetWorkType(ctx context.Context, code string) (models.WorkType, error) {
	code = models.NormalizeCode(code)
	var row database.WorkType
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return models.WorkType{}, wrap("get work type", "work type", code, err)
	}
	return toWorkType(row), nil
}

// CreateWorkType rejects a code that is already taken
func (s *Store) CreateWorkType(ctx context.Context, wt models.WorkType) (models.WorkType, error) {
	wt.Code = models.NormalizeCode(wt.Code)
	wt.Label = strings.TrimSpace(wt.Label)
	if err := validateWorkType(wt); err != nil {
		return models.WorkType{}, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&database.WorkType{}).Where("code = ?", wt.Code).Count(&n).Error; err != nil {
		return models.WorkType{}, wrap("create work type", "work type", wt.Code, err)
	}
	if n > 0 {
		return models.WorkType{}, &models.ValidationError{Field: "code", Message: "code " + wt.Code + " already exists"}
	}
	row := database.WorkType{Code: wt.Code, Label: wt.Label, Color: wt.Color}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.WorkType{}, wrap("create work type", "work type", wt.Code, err)
	}
	return toWorkType(row), nil
}

// UpdateWorkType changes label and color; the code itself is immutable
func (s *Store) UpdateWorkType(ctx context.Context, code string, wt models.WorkType) (models.WorkType, error) {
	code = models.NormalizeCode(code)
	var row database.WorkType
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return models.WorkType{}, wrap("update work type", "work type", code, err)
	}
	if label := strings.TrimSpace(wt.Label); label != "" {
		row.Label = label
	}
	if wt.Color != "" {
		row.Color = wt.Color
	}
	if err := validateWorkType(toWorkType(row)); err != nil {
		return models.WorkType{}, err
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.WorkType{}, wrap("update work type", "work type", code, err)
	}
	return toWorkType(row), nil
}

// DeleteWorkType refuses to remove a code that assignments still use
func (s *Store) DeleteWorkType(ctx context.Context, code string) error {
	code = models.NormalizeCode(code)
	var n int64
	if err := s.db.WithContext(ctx).Model(&database.Assignment{}).Where("work_type_code = ?", code).Count(&n).Error; err != nil {
		return wrap("delete work type", "work type", code, err)
	}
	if n > 0 {
		return &models.ValidationError{Field: "code", Message: "work type " + code + " is still assigned"}
	}
	res := s.db.WithContext(ctx).Delete(&database.WorkType{}, "code = ?", code)
	if res.Error != nil {
		return wrap("delete work type", "work type", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "work type", ID: code}
	}
	return nil
}
