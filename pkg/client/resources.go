package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

func (c *Client) ListAreas(ctx context.Context) ([]models.Area, error) {
	var out []models.Area
	err := c.get(ctx, "list areas", "/api/areas", &out)
	return out, err
}

func (c *Client) CreateArea(ctx context.Context, name string) (models.Area, error) {
	var out models.Area
	err := c.send(ctx, "create area", http.MethodPost, "/api/areas", map[string]string{"name": name}, &out)
	return out, err
}

// ListPeople lists the people of an area; an empty areaID lists everyone
func (c *Client) ListPeople(ctx context.Context, areaID string) ([]models.Person, error) {
	path := "/api/users"
	if areaID != "" {
		path += "?areaId=" + url.QueryEscape(areaID)
	}
	var out []models.Person
	err := c.get(ctx, "list people", path, &out)
	return out, err
}

func (c *Client) CreatePerson(ctx context.Context, p models.Person) (models.Person, error) {
	var out models.Person
	err := c.send(ctx, "create person", http.MethodPost, "/api/users", p, &out)
	return out, err
}

func (c *Client) ListWorkTypes(ctx context.Context) ([]models.WorkType, error) {
	var out []models.WorkType
	err := c.get(ctx, "list work types", "/api/work-types", &out)
	return out, err
}

func (c *Client) CreateWorkType(ctx context.Context, wt models.WorkType) (models.WorkType, error) {
	var out models.WorkType
	err := c.send(ctx, "create work type", http.MethodPost, "/api/work-types", wt, &out)
	return out, err
}

func (c *Client) ListAssignments(ctx context.Context, m time.Month, year int, areaID string) ([]models.Assignment, error) {
	var out []models.Assignment
	err := c.get(ctx, "list assignments", "/api/assignments/month/"+month(m, year)+"/"+esc(areaID), &out)
	return out, err
}

func (c *Client) ListAllAssignments(ctx context.Context, areaID string) ([]models.Assignment, error) {
	var out []models.Assignment
	err := c.get(ctx, "list assignments", "/api/assignments/"+esc(areaID), &out)
	return out, err
}

func (c *Client) ListAssignmentsByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	var out []models.Assignment
	err := c.get(ctx, "list user assignments", "/api/assignments/user/"+esc(userID), &out)
	return out, err
}

func (c *Client) ListAssignmentsByDateRange(ctx context.Context, start, end time.Time) ([]models.Assignment, error) {
	body := map[string]time.Time{"startDate": models.Day(start), "endDate": models.Day(end)}
	var out []models.Assignment
	err := c.send(ctx, "list range assignments", http.MethodPost, "/api/assignments/range", body, &out)
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, in models.AssignmentInput) (models.Assignment, error) {
	var out models.Assignment
	err := c.send(ctx, "create assignment", http.MethodPost, "/api/assignments", in, &out)
	return out, err
}

func (c *Client) UpdateAssignment(ctx context.Context, id string, patch models.AssignmentPatch) (models.Assignment, error) {
	var out models.Assignment
	err := c.send(ctx, "update assignment", http.MethodPut, "/api/assignments/"+esc(id), patch, &out)
	return out, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.send(ctx, "delete assignment", http.MethodDelete, "/api/assignments/"+esc(id), nil, nil)
}

func (c *Client) DeleteAssignmentsByUserAndMonth(ctx context.Context, userID string, m time.Month, year int) error {
	return c.send(ctx, "delete user month", http.MethodDelete, "/api/assignments/user/"+esc(userID)+"/"+month(m, year), nil, nil)
}

// DownloadReport streams the month report workbook into w
func (c *Client) DownloadReport(ctx context.Context, m time.Month, year int, areaID string, w io.Writer) error {
	return c.download(ctx, "export report", "/api/export/report/"+month(m, year)+"/"+esc(areaID), w)
}

// DownloadGrid streams the month grid workbook into w
func (c *Client) DownloadGrid(ctx context.Context, m time.Month, year int, areaID string, w io.Writer) error {
	return c.download(ctx, "export grid", "/api/export/grid/"+month(m, year)+"/"+esc(areaID), w)
}

func (c *Client) download(ctx context.Context, op, path string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &models.FetchError{Op: op, Err: err}
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return &models.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return decodeError(op, path, resp.StatusCode, raw)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return &models.FetchError{Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
