package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestGoalFlow_CreateProgressComplete(t *testing.T) {
	app := setupApp(t)
	token := app.registerVerifiedUser(t, "goals@test.com", "password123")

	deadline := time.Now().AddDate(0, 6, 0).Format(time.RFC3339)
	body := fmt.Sprintf(`{"title":"Emergency fund","target_amount":1000,"deadline":%q}`, deadline)
	rec := app.request("POST", "/api/v1/savings-goals", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	goalID := goal["id"].(float64)
	if goal["status"] != "In Progress" {
		t.Errorf("expected In Progress, got %v", goal["status"])
	}

	// Partial progress keeps the goal in progress.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/savings-goals/%.0f/progress", goalID),
		`{"current_amount":400}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress update failed: %d %s", rec.Code, rec.Body.String())
	}
	goal = parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["current_amount"].(float64) != 400 {
		t.Errorf("expected current amount 400, got %v", goal["current_amount"])
	}
	if goal["status"] != "In Progress" {
		t.Errorf("expected In Progress, got %v", goal["status"])
	}

	// Reaching the target completes the goal.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/savings-goals/%.0f/progress", goalID),
		`{"current_amount":1000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress update failed: %d %s", rec.Code, rec.Body.String())
	}
	goal = parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["status"] != "Completed" {
		t.Errorf("expected Completed, got %v", goal["status"])
	}
}

func TestGoalFlow_ListUpdateDelete(t *testing.T) {
	app := setupApp(t)
	token := app.registerVerifiedUser(t, "goallist@test.com", "password123")

	near := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	far := time.Now().AddDate(1, 0, 0).Format(time.RFC3339)
	app.request("POST", "/api/v1/savings-goals",
		fmt.Sprintf(`{"title":"Vacation","target_amount":2000,"deadline":%q}`, far), token)
	rec := app.request("POST", "/api/v1/savings-goals",
		fmt.Sprintf(`{"title":"New laptop","target_amount":1500,"deadline":%q}`, near), token)
	goalID := parseJSON(t, rec)["goal"].(map[string]interface{})["id"].(float64)

	// Soonest deadline comes first.
	rec = app.request("GET", "/api/v1/savings-goals", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	list := parseJSON(t, rec)
	goals := list["data"].([]interface{})
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}
	first := goals[0].(map[string]interface{})
	if first["title"] != "New laptop" {
		t.Errorf("expected the nearest deadline first, got %v", first["title"])
	}

	// Update
	body := fmt.Sprintf(`{"title":"Gaming laptop","target_amount":1800,"deadline":%q}`, near)
	rec = app.request("PUT", fmt.Sprintf("/api/v1/savings-goals/%.0f", goalID), body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["goal"].(map[string]interface{})
	if updated["title"] != "Gaming laptop" {
		t.Errorf("expected updated title, got %v", updated["title"])
	}

	// Delete
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/savings-goals/%.0f", goalID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/savings-goals", "", token)
	list = parseJSON(t, rec)
	if list["total_items"].(float64) != 1 {
		t.Errorf("expected 1 goal after delete, got %v", list["total_items"])
	}
}
