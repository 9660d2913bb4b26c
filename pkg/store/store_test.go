package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.InitDB(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "roster.db")})
	require.NoError(t, err)
	return New(db)
}

type fixture struct {
	area models.Area
	ana  models.Person
	luis models.Person
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	area, err := s.CreateArea(ctx, "Mantenimiento")
	require.NoError(t, err)
	ana, err := s.CreatePerson(ctx, models.Person{Name: "ana", AreaID: area.ID})
	require.NoError(t, err)
	luis, err := s.CreatePerson(ctx, models.Person{Name: "Luis", AreaID: area.ID})
	require.NoError(t, err)
	_, err = s.CreateWorkType(ctx, models.WorkType{Code: "vac", Label: "Vacaciones", Color: "#4caf50"})
	require.NoError(t, err)
	_, err = s.CreateWorkType(ctx, models.WorkType{Code: "SIC", Label: "Baja", Color: "#f44"})
	require.NoError(t, err)
	return fixture{area: area, ana: ana, luis: luis}
}

func TestPeople(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	assert.Equal(t, "ANA", f.ana.Name)
	people, err := s.ListPeople(ctx, f.area.ID)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "ANA", people[0].Name)

	other, err := s.CreateArea(ctx, "Oficina")
	require.NoError(t, err)
	moved, err := s.UpdatePerson(ctx, f.luis.ID, models.Person{AreaID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "LUIS", moved.Name)
	people, err = s.ListPeople(ctx, f.area.ID)
	require.NoError(t, err)
	assert.Len(t, people, 1)

	_, err = s.CreatePerson(ctx, models.Person{Name: " "})
	assert.True(t, models.IsValidation(err))
	_, err = s.CreatePerson(ctx, models.Person{Name: "x", AreaID: "missing"})
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(s.DeletePerson(ctx, "missing")))
	assert.True(t, models.IsValidation(s.DeleteArea(ctx, f.area.ID)))
}

func TestWorkTypes(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	types, err := s.ListWorkTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "SIC", types[0].Code)
	assert.Equal(t, "VAC", types[1].Code)

	_, err = s.CreateWorkType(ctx, models.WorkType{Code: "VAC", Label: "dup", Color: "#000"})
	assert.True(t, models.IsValidation(err))
	_, err = s.CreateWorkType(ctx, models.WorkType{Code: "OT", Label: "Otro", Color: "red"})
	assert.True(t, models.IsValidation(err))

	wt, err := s.UpdateWorkType(ctx, "vac", models.WorkType{Label: "Vacaciones pagadas"})
	require.NoError(t, err)
	assert.Equal(t, "#4caf50", wt.Color)
	assert.Equal(t, "Vacaciones pagadas", wt.Label)

	require.NoError(t, s.DeleteWorkType(ctx, "SIC"))
	assert.True(t, models.IsNotFound(s.DeleteWorkType(ctx, "SIC")))
}

func TestAssignments_MonthWindow(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	march, err := s.CreateAssignment(ctx, models.AssignmentInput{
		UserID: f.ana.ID, WorkTypeCode: "vac",
		StartDate: models.Date(2024, time.March, 5), EndDate: models.Date(2024, time.March, 9),
	})
	require.NoError(t, err)
	assert.Equal(t, "VAC", march.WorkTypeCode)
	assert.Equal(t, f.area.ID, march.AreaID)
	require.NotNil(t, march.User)
	assert.Equal(t, "ANA", march.User.Name)

	spanning, err := s.CreateAssignment(ctx, models.AssignmentInput{
		UserID: f.luis.ID, WorkTypeCode: "SIC",
		StartDate: models.Date(2024, time.March, 29), EndDate: models.Date(2024, time.April, 2),
	})
	require.NoError(t, err)
	_, err = s.CreateAssignment(ctx, models.AssignmentInput{
		UserID: f.ana.ID, WorkTypeCode: "SIC",
		StartDate: models.Date(2024, time.April, 10), EndDate: models.Date(2024, time.April, 10),
	})
	require.NoError(t, err)

	inMarch, err := s.ListAssignments(ctx, time.March, 2024, f.area.ID)
	require.NoError(t, err)
	require.Len(t, inMarch, 2)
	assert.Equal(t, march.ID, inMarch[0].ID)
	assert.Equal(t, spanning.ID, inMarch[1].ID)

	inApril, err := s.ListAssignments(ctx, time.April, 2024, "")
	require.NoError(t, err)
	assert.Len(t, inApril, 2)

	none, err := s.ListAssignments(ctx, time.March, 2024, "other-area")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.ListAssignments(ctx, 13, 2024, "")
	assert.True(t, models.IsValidation(err))

	byUser, err := s.ListAssignmentsByUser(ctx, f.ana.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byRange, err := s.ListAssignmentsByDateRange(ctx, models.Date(2024, time.April, 1), models.Date(2024, time.April, 5))
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	assert.Equal(t, spanning.ID, byRange[0].ID)
}

func TestAssignments_CreateRejects(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	day := models.Date(2024, time.March, 5)

	_, err := s.CreateAssignment(ctx, models.AssignmentInput{UserID: f.ana.ID, WorkTypeCode: "VAC", StartDate: day, EndDate: day.AddDate(0, 0, -1)})
	assert.True(t, models.IsValidation(err))
	_, err = s.CreateAssignment(ctx, models.AssignmentInput{UserID: "nobody", WorkTypeCode: "VAC", StartDate: day, EndDate: day})
	assert.True(t, models.IsNotFound(err))
	_, err = s.CreateAssignment(ctx, models.AssignmentInput{UserID: f.ana.ID, WorkTypeCode: "ZZZ", StartDate: day, EndDate: day})
	assert.True(t, models.IsNotFound(err))
}

func TestAssignments_UpdateDelete(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	a, err := s.CreateAssignment(ctx, models.AssignmentInput{
		UserID: f.ana.ID, WorkTypeCode: "VAC",
		StartDate: models.Date(2024, time.March, 5), EndDate: models.Date(2024, time.March, 9),
	})
	require.NoError(t, err)

	code := "sic"
	end := models.Date(2024, time.March, 12)
	updated, err := s.UpdateAssignment(ctx, a.ID, models.AssignmentPatch{WorkTypeCode: &code, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, "SIC", updated.WorkTypeCode)
	assert.Equal(t, end, updated.EndDate)
	assert.Equal(t, models.Date(2024, time.March, 5), updated.StartDate)

	early := models.Date(2024, time.March, 1)
	_, err = s.UpdateAssignment(ctx, a.ID, models.AssignmentPatch{EndDate: &early})
	assert.True(t, models.IsValidation(err))
	_, err = s.UpdateAssignment(ctx, "missing", models.AssignmentPatch{EndDate: &end})
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsValidation(s.DeletePerson(ctx, f.ana.ID)))
	assert.True(t, models.IsValidation(s.DeleteWorkType(ctx, "SIC")))

	require.NoError(t, s.DeleteAssignment(ctx, a.ID))
	assert.True(t, models.IsNotFound(s.DeleteAssignment(ctx, a.ID)))
	require.NoError(t, s.DeletePerson(ctx, f.ana.ID))
}

func TestAssignments_DeleteByUserAndMonth(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	for _, in := range []models.AssignmentInput{
		{UserID: f.ana.ID, WorkTypeCode: "VAC", StartDate: models.Date(2024, time.March, 1), EndDate: models.Date(2024, time.March, 2)},
		{UserID: f.ana.ID, WorkTypeCode: "VAC", StartDate: models.Date(2024, time.April, 1), EndDate: models.Date(2024, time.April, 2)},
		{UserID: f.luis.ID, WorkTypeCode: "VAC", StartDate: models.Date(2024, time.March, 1), EndDate: models.Date(2024, time.March, 2)},
	} {
		_, err := s.CreateAssignment(ctx, in)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteAssignmentsByUserAndMonth(ctx, f.ana.ID, time.March, 2024))
	left, err := s.ListAllAssignments(ctx, "")
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, a := range left {
		assert.False(t, a.UserID == f.ana.ID && a.StartDate.Month() == time.March)
	}
}

func TestAssignments_FollowPersonArea(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	office, err := s.CreateArea(ctx, "Oficina")
	require.NoError(t, err)
	beto, err := s.CreatePerson(ctx, models.Person{Name: "Beto", AreaID: office.ID})
	require.NoError(t, err)
	day := models.Date(2024, time.March, 5)

	_, err = s.CreateAssignment(ctx, models.AssignmentInput{UserID: beto.ID, AreaID: f.area.ID, WorkTypeCode: "VAC", StartDate: day, EndDate: day})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "areaId", ve.Field)

	a, err := s.CreateAssignment(ctx, models.AssignmentInput{UserID: beto.ID, WorkTypeCode: "VAC", StartDate: day, EndDate: day})
	require.NoError(t, err)
	assert.Equal(t, office.ID, a.AreaID)
	inOffice, err := s.ListAssignments(ctx, time.March, 2024, office.ID)
	require.NoError(t, err)
	require.Len(t, inOffice, 1)

	// handing the assignment to ana moves it to her area
	a, err = s.UpdateAssignment(ctx, a.ID, models.AssignmentPatch{UserID: &f.ana.ID})
	require.NoError(t, err)
	assert.Equal(t, f.area.ID, a.AreaID)
	inOffice, err = s.ListAssignments(ctx, time.March, 2024, office.ID)
	require.NoError(t, err)
	assert.Empty(t, inOffice)

	// and moving ana carries her assignments along
	_, err = s.UpdatePerson(ctx, f.ana.ID, models.Person{AreaID: office.ID})
	require.NoError(t, err)
	inOffice, err = s.ListAssignments(ctx, time.March, 2024, office.ID)
	require.NoError(t, err)
	require.Len(t, inOffice, 1)
	assert.Equal(t, a.ID, inOffice[0].ID)
	assert.Equal(t, office.ID, inOffice[0].AreaID)
}

func TestAssignments_RangeTooLong(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	start := models.Date(2024, time.March, 1)

	_, err := s.CreateAssignment(ctx, models.AssignmentInput{UserID: f.ana.ID, WorkTypeCode: "VAC", StartDate: start, EndDate: start.AddDate(5, 0, 0)})
	assert.True(t, models.IsValidation(err))

	a, err := s.CreateAssignment(ctx, models.AssignmentInput{UserID: f.ana.ID, WorkTypeCode: "VAC", StartDate: start, EndDate: start})
	require.NoError(t, err)
	far := start.AddDate(2, 0, 0)
	_, err = s.UpdateAssignment(ctx, a.ID, models.AssignmentPatch{EndDate: &far})
	assert.True(t, models.IsValidation(err))
}
