package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/footylytics/matchseer/internal/domain/prediction"
)

func TestPredictionRepositoryNewestFirst(t *testing.T) {
	repo := NewPredictionRepository(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record := prediction.Record{ID: fmt.Sprintf("r%d", i)}
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected record count: got=%d want=2", len(records))
	}
	if records[0].ID != "r2" || records[1].ID != "r1" {
		t.Fatalf("unexpected order: got=%s,%s want=r2,r1", records[0].ID, records[1].ID)
	}
}

func TestPredictionRepositoryDropsOldestAtCapacity(t *testing.T) {
	repo := NewPredictionRepository(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, prediction.Record{ID: fmt.Sprintf("r%d", i)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("unexpected record count: got=%d want=2", len(records))
	}
	if records[0].ID != "r2" || records[1].ID != "r1" {
		t.Fatalf("oldest record not dropped: got=%s,%s", records[0].ID, records[1].ID)
	}
}
