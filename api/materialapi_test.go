package api_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/gobwas/ws"
	"github.com/sksmith/print-factory/api"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/testutil"
)

func setupMaterialTestServer() (*httptest.Server, *material.MockMaterialService) {
	mockSvc := material.NewMockMaterialService()
	matApi := api.NewMaterialApi(&mockSvc)
	r := chi.NewRouter()
	matApi.ConfigureRouter(r)
	ts := httptest.NewServer(r)

	return ts, &mockSvc
}

func getTestMaterials() []material.Material {
	return []material.Material{
		{ID: 1, Color: "galaxy black", Brand: "prusament", Composition: "pla", OnHandKg: 2.4, AvgCostKg: 24.99},
		{ID: 2, Color: "orange", Brand: "overture", Composition: "petg", OnHandKg: 0.8, AvgCostKg: 19.50},
	}
}

func TestMaterialList(t *testing.T) {
	ts, mockSvc := setupMaterialTestServer()
	defer ts.Close()

	tests := []struct {
		name string

		limit      int
		wantLimit  int
		offset     int
		wantOffset int
		serviceErr error

		wantStatusCode int
	}{
		{
			name:  "defaults applied when unset",
			limit: -1, wantLimit: 50, offset: -1, wantOffset: 0,
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "explicit paging honored",
			limit: 5, wantLimit: 5, offset: 7, wantOffset: 7,
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "service failure is a 500",
			limit: -1, wantLimit: 50, offset: -1, wantOffset: 0,
			serviceErr:     fmt.Errorf("something bad happened"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit, gotOffset := -1, -1
			mockSvc.GetAllMaterialsFunc = func(ctx context.Context, limit, offset int) ([]material.Material, error) {
				gotLimit, gotOffset = limit, offset
				return getTestMaterials(), tt.serviceErr
			}

			url := ts.URL
			if tt.limit > -1 {
				url += fmt.Sprintf("?limit=%d&offset=%d", tt.limit, tt.offset)
			}

			res, err := http.Get(url)
			if err != nil {
				t.Fatal(err)
			}

			if res.StatusCode != tt.wantStatusCode {
				t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tt.wantStatusCode)
			}

			if tt.serviceErr == nil {
				got := []material.Material{}
				testutil.Unmarshal(res, &got, t)
				if !reflect.DeepEqual(got, getTestMaterials()) {
					t.Errorf("materials\n got:%+v\nwant:%+v\n", got, getTestMaterials())
				}
			}

			if gotLimit != tt.wantLimit {
				t.Errorf("limit got=[%d] want=[%d]", gotLimit, tt.wantLimit)
			}
			if gotOffset != tt.wantOffset {
				t.Errorf("offset got=[%d] want=[%d]", gotOffset, tt.wantOffset)
			}
		})
	}
}

func TestMaterialCreate(t *testing.T) {
	ts, mockSvc := setupMaterialTestServer()
	defer ts.Close()

	tests := []struct {
		name string

		body map[string]interface{}

		wantStatusCode int
		wantCreated    bool
	}{
		{
			name: "valid material",
			body: map[string]interface{}{
				"color": "galaxy black", "brand": "prusament", "composition": "pla",
			},
			wantStatusCode: http.StatusCreated,
			wantCreated:    true,
		},
		{
			name: "client cannot seed stock or cost",
			body: map[string]interface{}{
				"color": "galaxy black", "brand": "prusament", "composition": "pla",
				"onHandKg": 99.0, "avgCostKg": 12.0,
			},
			wantStatusCode: http.StatusCreated,
			wantCreated:    true,
		},
		{
			name:           "missing required fields",
			body:           map[string]interface{}{"color": "galaxy black"},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *material.Material
			mockSvc.CreateMaterialFunc = func(ctx context.Context, m material.Material) (material.Material, error) {
				created = &m
				return m, nil
			}

			res := testutil.Put(ts.URL, tt.body, t)

			if res.StatusCode != tt.wantStatusCode {
				t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tt.wantStatusCode)
			}

			if tt.wantCreated {
				if created == nil {
					t.Fatal("expected the service to be called")
				}
				if created.OnHandKg != 0 || created.AvgCostKg != 0 {
					t.Errorf("request smuggled stock=%f cost=%f past the dto", created.OnHandKg, created.AvgCostKg)
				}
			} else if created != nil {
				t.Error("service called for an invalid request")
			}
		})
	}
}

func TestMaterialRecordPurchase(t *testing.T) {
	ts, mockSvc := setupMaterialTestServer()
	defer ts.Close()

	mockSvc.GetMaterialFunc = func(ctx context.Context, id int64) (material.Material, error) {
		if id != 1 {
			return material.Material{}, core.ErrNotFound
		}
		return getTestMaterials()[0], nil
	}

	tests := []struct {
		name string

		url  string
		body map[string]interface{}

		wantStatusCode int
		wantMaterialID int64
	}{
		{
			name:           "valid purchase",
			url:            "/1/purchase",
			body:           map[string]interface{}{"quantityKg": 5.0, "costPerKg": 20.0},
			wantStatusCode: http.StatusCreated,
			wantMaterialID: 1,
		},
		{
			name:           "material id comes from the path, not the body",
			url:            "/1/purchase",
			body:           map[string]interface{}{"quantityKg": 5.0, "costPerKg": 20.0, "materialId": 42.0},
			wantStatusCode: http.StatusCreated,
			wantMaterialID: 1,
		},
		{
			name:           "zero quantity",
			url:            "/1/purchase",
			body:           map[string]interface{}{"quantityKg": 0.0, "costPerKg": 20.0},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unknown material",
			url:            "/99/purchase",
			body:           map[string]interface{}{"quantityKg": 5.0, "costPerKg": 20.0},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded *material.PurchaseRequest
			mockSvc.RecordPurchaseFunc = func(ctx context.Context, pr material.PurchaseRequest) (material.Material, error) {
				recorded = &pr
				return getTestMaterials()[0], nil
			}

			res := testutil.Put(ts.URL+tt.url, tt.body, t)

			if res.StatusCode != tt.wantStatusCode {
				t.Errorf("status code got=[%d] want=[%d]", res.StatusCode, tt.wantStatusCode)
			}

			if tt.wantMaterialID != 0 {
				if recorded == nil {
					t.Fatal("expected the service to be called")
				}
				if recorded.MaterialID != tt.wantMaterialID {
					t.Errorf("materialId got=[%d] want=[%d]", recorded.MaterialID, tt.wantMaterialID)
				}
			}
		})
	}
}

func TestMaterialSubscribe(t *testing.T) {
	mockSvc := material.NewMockMaterialService()

	subscribeCalled := false
	unsubscribeCalled := false

	mockSvc.SubscribeStockFunc = func(ch chan<- material.Material) (id material.StockSubID) {
		subscribeCalled = true
		go func() {
			for _, m := range getTestMaterials() {
				ch <- m
			}
			close(ch)
		}()
		return material.StockSubID("subid1")
	}
	mockSvc.UnsubscribeStockFunc = func(id material.StockSubID) {
		unsubscribeCalled = true
	}

	matApi := api.NewMaterialApi(&mockSvc)
	r := chi.NewRouter()
	matApi.ConfigureRouter(r)
	ts := httptest.NewServer(r)
	defer ts.Close()

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/subscribe"

	conn, br, _, err := ws.DefaultDialer.Dial(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	// Dial hands back any bytes that arrived with the handshake response in
	// br; frames the server sent immediately live there, not on conn.
	var rw io.ReadWriter = conn
	if br != nil {
		rw = struct {
			io.Reader
			io.Writer
		}{br, conn}
	}

	want := getTestMaterials()
	for i := range want {
		got := &material.Material{}
		testutil.ReadWs(rw, got, t)

		if got.ID != want[i].ID {
			t.Errorf("unexpected ws response[%d] got=[%d] want=[%d]", i, got.ID, want[i].ID)
		}
	}

	if !subscribeCalled {
		t.Error("subscribe never called")
	}

	// The handler unsubscribes on its way out after the channel closes.
	deadline := time.Now().Add(time.Second)
	for !unsubscribeCalled && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !unsubscribeCalled {
		t.Error("unsubscribe never called")
	}
}
