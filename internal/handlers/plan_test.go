package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func dayIndexContext(value string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("dayIndex")
	c.SetParamValues(value)

	return c
}

// TestParseDayIndexValid проверяет разбор корректного индекса дня.
func TestParseDayIndexValid(t *testing.T) {
	for _, value := range []string{"0", "3", "6"} {
		if _, err := parseDayIndex(dayIndexContext(value)); err != nil {
			t.Fatalf("expected no error for %s, got %v", value, err)
		}
	}
}

// TestParseDayIndexInvalid проверяет ошибки для значений вне недели.
func TestParseDayIndexInvalid(t *testing.T) {
	for _, value := range []string{"-1", "7", "abc", ""} {
		if _, err := parseDayIndex(dayIndexContext(value)); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

// TestNormalizeName проверяет обрезку и сброс пустых имен.
func TestNormalizeName(t *testing.T) {
	if got := normalizeName(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}

	empty := "   "
	if got := normalizeName(&empty); got != nil {
		t.Fatalf("expected nil for blank name, got %q", *got)
	}

	name := "  Ayşe  "
	got := normalizeName(&name)
	if got == nil || *got != "Ayşe" {
		t.Fatalf("expected trimmed name, got %v", got)
	}
}
