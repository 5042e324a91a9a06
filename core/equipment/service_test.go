package equipment_test

import (
	"context"
	"os"
	"testing"

	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/equipment"
	"github.com/sksmith/print-factory/db/equiprepo"
	"github.com/sksmith/print-factory/test"
)

func TestMain(m *testing.M) {
	test.ConfigLogging()
	os.Exit(m.Run())
}

func TestCreatePrinterType(t *testing.T) {
	tests := []struct {
		name string

		request  equipment.PrinterType
		existing *equipment.PrinterType

		wantRepoCallCnt map[string]int
		wantErr         bool
	}{
		{
			name:            "new type is saved",
			request:         equipment.PrinterType{Brand: "prusa", Model: "mk4", LifeHours: 26280},
			wantRepoCallCnt: map[string]int{"SavePrinterType": 1},
		},
		{
			name:            "existing brand and model returns the existing type",
			request:         equipment.PrinterType{Brand: "prusa", Model: "mk4", LifeHours: 26280},
			existing:        &equipment.PrinterType{ID: 3, Brand: "prusa", Model: "mk4", LifeHours: 26280},
			wantRepoCallCnt: map[string]int{"SavePrinterType": 0},
		},
		{
			name:            "zero life hours is refused",
			request:         equipment.PrinterType{Brand: "prusa", Model: "mk4"},
			wantRepoCallCnt: map[string]int{"SavePrinterType": 0},
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		mockRepo := equiprepo.NewMockRepo()
		if tt.existing != nil {
			mockRepo.GetPrinterTypeByModelFunc = func(ctx context.Context, brand, model string, options ...core.QueryOptions) (equipment.PrinterType, error) {
				return *tt.existing, nil
			}
		}
		service := equipment.NewService(&mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			got, err := service.CreatePrinterType(context.Background(), tt.request)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !tt.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}

			if tt.existing != nil && got.ID != tt.existing.ID {
				t.Errorf("got id=%d want=%d", got.ID, tt.existing.ID)
			}
			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

func TestCreatePrinter(t *testing.T) {
	tests := []struct {
		name string

		request      equipment.Printer
		existingName string

		wantRepoCallCnt map[string]int
		wantErr         bool
	}{
		{
			name:            "new printer starts idle with zero wear",
			request:         equipment.Printer{Name: "Bench MK4", TypeID: 3, Price: 750, UsageHours: 500, Status: equipment.Printing},
			wantRepoCallCnt: map[string]int{"SavePrinter": 1},
		},
		{
			name:            "name differing only in case and spacing collides",
			request:         equipment.Printer{Name: "Bench  MK4", TypeID: 3, Price: 750},
			existingName:    "bench mk4",
			wantRepoCallCnt: map[string]int{"SavePrinter": 0},
			wantErr:         true,
		},
		{
			name:            "unknown printer type is refused",
			request:         equipment.Printer{Name: "Bench MK4", TypeID: 99, Price: 750},
			wantRepoCallCnt: map[string]int{"SavePrinter": 0},
			wantErr:         true,
		},
		{
			name:            "negative price is refused",
			request:         equipment.Printer{Name: "Bench MK4", TypeID: 3, Price: -1},
			wantRepoCallCnt: map[string]int{"SavePrinter": 0},
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		mockRepo := equiprepo.NewMockRepo()
		mockRepo.GetPrinterTypeFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.PrinterType, error) {
			if id != 3 {
				return equipment.PrinterType{}, core.ErrNotFound
			}
			return equipment.PrinterType{ID: 3, LifeHours: 26280}, nil
		}
		if tt.existingName != "" {
			mockRepo.GetPrinterByNameFunc = func(ctx context.Context, normalizedName string, options ...core.QueryOptions) (equipment.Printer, error) {
				if normalizedName == tt.existingName {
					return equipment.Printer{ID: 7, Name: tt.existingName}, nil
				}
				return equipment.Printer{}, core.ErrNotFound
			}
		}

		var saved *equipment.Printer
		mockRepo.SavePrinterFunc = func(ctx context.Context, p *equipment.Printer, options ...core.UpdateOptions) error {
			saved = p
			return nil
		}

		service := equipment.NewService(&mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreatePrinter(context.Background(), tt.request)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !tt.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}

			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}

			if saved != nil && (saved.UsageHours != 0 || saved.Status != equipment.Idle) {
				t.Errorf("created printer got hours=%f status=%s, want zero wear and idle", saved.UsageHours, saved.Status)
			}
		})
	}
}

func TestUpdatePrinterStatus(t *testing.T) {
	tests := []struct {
		name string

		current equipment.Status
		target  equipment.Status

		wantRepoCallCnt map[string]int
		wantErr         bool
	}{
		{
			name:    "idle to maintenance",
			current: equipment.Idle, target: equipment.Maintenance,
			wantRepoCallCnt: map[string]int{"SavePrinter": 1},
		},
		{
			name:    "printing cannot be set by hand",
			current: equipment.Idle, target: equipment.Printing,
			wantRepoCallCnt: map[string]int{"SavePrinter": 0},
			wantErr:         true,
		},
		{
			name:    "a running printer cannot be moved",
			current: equipment.Printing, target: equipment.Offline,
			wantRepoCallCnt: map[string]int{"SavePrinter": 0},
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		mockRepo := equiprepo.NewMockRepo()
		mockRepo.GetPrinterFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
			return equipment.Printer{ID: id, Status: tt.current}, nil
		}
		service := equipment.NewService(&mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			got, err := service.UpdatePrinterStatus(context.Background(), 7, tt.target)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !tt.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}

			if err == nil && got.Status != tt.target {
				t.Errorf("status got=%s want=%s", got.Status, tt.target)
			}
			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

func TestDeletePrinter(t *testing.T) {
	tests := []struct {
		name string

		status equipment.Status

		wantRepoCallCnt map[string]int
		wantErr         bool
	}{
		{
			name:            "idle printer is deleted",
			status:          equipment.Idle,
			wantRepoCallCnt: map[string]int{"DeletePrinter": 1},
		},
		{
			name:            "running printer is refused",
			status:          equipment.Printing,
			wantRepoCallCnt: map[string]int{"DeletePrinter": 0},
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		mockRepo := equiprepo.NewMockRepo()
		mockRepo.GetPrinterFunc = func(ctx context.Context, id int64, options ...core.QueryOptions) (equipment.Printer, error) {
			return equipment.Printer{ID: id, Status: tt.status}, nil
		}
		service := equipment.NewService(&mockRepo)

		t.Run(tt.name, func(t *testing.T) {
			err := service.DeletePrinter(context.Background(), 7)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got none")
			} else if !tt.wantErr && err != nil {
				t.Errorf("did not want error, got=%v", err)
			}

			for f, c := range tt.wantRepoCallCnt {
				mockRepo.VerifyCount(f, c, t)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ender  3", "ender 3"},
		{"  ENDER 3  ", "ender 3"},
		{"ender 3", "ender 3"},
	}

	for _, tt := range tests {
		if got := equipment.NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) got=%q want=%q", tt.in, got, tt.want)
		}
	}
}

func TestRemainingLife(t *testing.T) {
	pt := equipment.PrinterType{LifeHours: 1000}

	p := equipment.Printer{UsageHours: 250}
	if got := p.RemainingLifeHours(pt); got != 750 {
		t.Errorf("remaining hours got=%f want=%f", got, 750.0)
	}
	if got := p.RemainingLifePct(pt); got != 75 {
		t.Errorf("remaining pct got=%f want=%f", got, 75.0)
	}

	wornOut := equipment.Printer{UsageHours: 1500}
	if got := wornOut.RemainingLifeHours(pt); got != 0 {
		t.Errorf("worn out hours got=%f want=%f", got, 0.0)
	}
}
