package api_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/sksmith/print-factory/api"
	"github.com/sksmith/print-factory/config"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
	"github.com/sksmith/print-factory/core/user"
	"github.com/sksmith/print-factory/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func getRouter() chi.Router {
	cfg := config.LoadDefaults()
	matSvc := material.NewMockMaterialService()
	prodSvc := product.NewMockProductService()
	equipSvc := equipment.NewMockEquipmentService()
	batchSvc := batch.NewMockBatchService()
	usrSvc := user.NewMockUserService()
	return api.ConfigureRouter(cfg, &matSvc, &prodSvc, &equipSvc, &batchSvc, &usrSvc)
}

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://localhost:8080", want: "http://localhost:8080"},
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "https://localhost:3000", want: "https://localhost:3000"},
		{origin: "https://evilorigin.com", want: ""},
		{origin: "http://localhostevil:3000", want: ""},
	}

	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	client := http.DefaultClient
	url := ts.URL + "/api/v1/material"

	for _, tt := range tests {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Add("Origin", tt.origin)

		res, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}

		got := res.Header.Get("Access-Control-Allow-Origin")
		if got != tt.want {
			t.Errorf("failed cors test got=[%v] want=[%v]", got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusOK)
	}
}

func TestApiRequiresAuthentication(t *testing.T) {
	r := getRouter()
	ts := httptest.NewServer(r)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/v1/material")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, http.StatusUnauthorized)
	}
	if res.Header.Get("WWW-Authenticate") == "" {
		t.Error("expected a WWW-Authenticate challenge")
	}
}
