package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitjourney/go-api/client"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/meals", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(client.MealDay{
			Date:  "2026-10-17",
			Items: []client.Meal{{ID: 3, MealType: "lunch", Name: "Soup", Calories: 450}},
		})
	})
	mux.HandleFunc("POST /api/meals", func(w http.ResponseWriter, r *http.Request) {
		var in client.MealInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.ProteinG == nil || *in.ProteinG != 30 || in.FatG != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unexpected macros"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(client.Meal{ID: 4, Date: in.Date, MealType: in.MealType, Name: in.Name, Calories: in.Calories})
	})
	mux.HandleFunc("DELETE /api/meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"meal not found"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, "tok")
}

func TestRun_Meals(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), newServer(t), &out, "meals", nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Soup", "450", "total 2026-10-17"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_AddMeal(t *testing.T) {
	var out bytes.Buffer
	args := []string{"-type", "dinner", "-name", "Salmon", "-kcal", "600", "-protein", "30"}
	if err := run(context.Background(), newServer(t), &out, "add-meal", args); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "logged Salmon (600 kcal) as meal 4") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()
	var out bytes.Buffer

	if err := run(ctx, c, &out, "add-meal", []string{"-kcal", "100"}); !errors.Is(err, errUsage) {
		t.Errorf("add-meal without name: %v", err)
	}
	if err := run(ctx, c, &out, "rm-meal", nil); !errors.Is(err, errUsage) {
		t.Errorf("rm-meal without id: %v", err)
	}
	if err := run(ctx, c, &out, "rm-meal", []string{"x"}); err == nil {
		t.Error("rm-meal with non-numeric id should fail")
	}
	if err := run(ctx, c, &out, "rm-meal", []string{"9"}); !client.IsNotFound(err) {
		t.Errorf("rm-meal missing: %v", err)
	}
	if err := run(ctx, c, &out, "bogus", nil); err == nil {
		t.Error("unknown command should fail")
	}
}
