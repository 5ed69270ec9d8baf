package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beachpoint/portal/models"
)

func TestListCategoriesSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]models.Category{
			{ID: 1, Name: "Duplas Mista", Gender: models.GenderMista, GameType: models.GameDuplas},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	categories, err := client.ListCategories(context.Background(), "abc123", 7)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want token passed through", gotAuth)
	}
	if gotPath != "/tournaments/7/categories" {
		t.Errorf("path = %q", gotPath)
	}
	if len(categories) != 1 || categories[0].GameType != models.GameDuplas {
		t.Errorf("categories = %+v", categories)
	}
}

func TestCreateCategoryRegistrationBody(t *testing.T) {
	var got models.CategoryRegistrationInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/beach-tennis/category-registrations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	partner := 5
	client := NewClient(srv.URL, 600, nil)
	err := client.CreateCategoryRegistration(context.Background(), "t", models.CategoryRegistrationInput{
		TournamentID: 7,
		CategoryID:   12,
		Player1ID:    2,
		Player2ID:    &partner,
	})
	if err != nil {
		t.Fatalf("CreateCategoryRegistration: %v", err)
	}
	if got.CategoryID != 12 || got.Player1ID != 2 || got.Player2ID == nil || *got.Player2ID != 5 {
		t.Errorf("request body = %+v", got)
	}
}

func TestErrorCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "CPF já cadastrado"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	err := client.CreateTournamentRegistration(context.Background(), "t", models.TournamentRegistrationInput{})

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if be.StatusCode != http.StatusConflict || be.Message != "CPF já cadastrado" {
		t.Errorf("Error = %+v, want backend message verbatim", be)
	}
}

func TestErrorFallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	_, err := client.ListPlayers(context.Background(), "t")

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if be.Message != "upstream unavailable" {
		t.Errorf("message = %q, want raw body fallback", be.Message)
	}
}

func TestExtractMessageTruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", 500)
	got := extractMessage([]byte(body))
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("extractMessage long body = %d chars", len(got))
	}
}

func TestListCategoryRegistrationsPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]models.CategoryRegistration{{ID: 100}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 600, nil)
	regs, err := client.ListCategoryRegistrations(context.Background(), "t", 12, 7)
	if err != nil {
		t.Fatalf("ListCategoryRegistrations: %v", err)
	}
	if gotPath != "/beach-tennis/category-registrations/12/7" {
		t.Errorf("path = %q", gotPath)
	}
	if len(regs) != 1 || regs[0].ID != 100 {
		t.Errorf("regs = %+v", regs)
	}
}
