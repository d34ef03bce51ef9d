package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestExpenseFlow_CreateListUpdateDelete(t *testing.T) {
	app := setupApp(t)
	token := app.registerVerifiedUser(t, "expenses@test.com", "password123")

	// Create
	rec := app.request("POST", "/api/v1/expenses",
		`{"category":"Groceries","amount":42.5,"description":"weekly shop"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	created := parseJSON(t, rec)["expense"].(map[string]interface{})
	expenseID := created["id"].(float64)

	// List
	rec = app.request("GET", "/api/v1/expenses", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	list := parseJSON(t, rec)
	if list["total_items"].(float64) != 1 {
		t.Errorf("expected 1 expense, got %v", list["total_items"])
	}

	// Update
	body := `{"category":"Dining","amount":55,"description":"dinner"}`
	rec = app.request("PUT", fmt.Sprintf("/api/v1/expenses/%.0f", expenseID), body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)["expense"].(map[string]interface{})
	if updated["category"] != "Dining" {
		t.Errorf("expected category Dining, got %v", updated["category"])
	}

	// Summary reflects the updated expense
	rec = app.request("GET", "/api/v1/expenses/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if summary["total"].(float64) != 55 {
		t.Errorf("expected total 55, got %v", summary["total"])
	}

	// Delete
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/expenses/%.0f", expenseID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/expenses", "", token)
	list = parseJSON(t, rec)
	if list["total_items"].(float64) != 0 {
		t.Errorf("expected no expenses after delete, got %v", list["total_items"])
	}
}

func TestExpenseFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	token1 := app.registerVerifiedUser(t, "owner@test.com", "password123")
	token2 := app.registerVerifiedUser(t, "intruder@test.com", "password123")

	rec := app.request("POST", "/api/v1/expenses",
		`{"category":"Groceries","amount":10}`, token1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(float64)

	// Another user cannot touch it.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/expenses/%.0f", expenseID),
		`{"category":"Groceries","amount":999}`, token2)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's expense, got %d", rec.Code)
	}

	rec = app.request("DELETE", fmt.Sprintf("/api/v1/expenses/%.0f", expenseID), "", token2)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's expense, got %d", rec.Code)
	}
}

func TestExpenseFlow_RejectsInvalidInput(t *testing.T) {
	app := setupApp(t)
	token := app.registerVerifiedUser(t, "invalid@test.com", "password123")

	rec := app.request("POST", "/api/v1/expenses", `{"category":"","amount":10}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty category, got %d", rec.Code)
	}

	rec = app.request("POST", "/api/v1/expenses", `{"category":"Groceries","amount":-5}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", rec.Code)
	}
}
