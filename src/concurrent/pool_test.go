package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	items := []int{5, 3, 8, 1, 9, 2}
	results, err := ParallelMap(context.Background(), items, func(n int) (int, error) {
		return n * 2, nil
	}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, n := range items {
		if results[i] != n*2 {
			t.Fatalf("expected %d at index %d, got %d", n*2, i, results[i])
		}
	}
}

func TestParallelMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParallelMap(context.Background(), []int{1, 2, 3}, func(n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the worker error, got %v", err)
	}
}

func TestParallelMapEmptyInput(t *testing.T) {
	results, err := ParallelMap(context.Background(), nil, func(int) (int, error) { return 0, nil }, 2)
	if err != nil || results != nil {
		t.Fatalf("expected nil results for empty input, got %v / %v", results, err)
	}
}

func TestParallelForEachVisitsAll(t *testing.T) {
	var count atomic.Int64
	err := ParallelForEach(context.Background(), []int{1, 2, 3, 4}, func(int) error {
		count.Add(1)
		return nil
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count.Load() != 4 {
		t.Fatalf("expected 4 visits, got %d", count.Load())
	}
}

func TestParallelForEachPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := ParallelForEach(context.Background(), []int{1, 2, 3}, func(n int) error {
		if n == 3 {
			return boom
		}
		return nil
	}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the worker error, got %v", err)
	}
}
