package krotov

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestReporterOutput(t *testing.T) {
	p, _ := tlsProblem(50, 2)
	var buf bytes.Buffer
	p.Out = &buf

	if _, err := Optimize(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// Header plus one row each for iterations 0, 1, 2.
	if len(lines) != 4 {
		t.Fatalf("line count: got %d\n%s", len(lines), buf.String())
	}

	header := lines[0]
	for _, col := range []string{"iter", "J_T", "g_a_int", "J", "dJ_T", "dJ", "secs"} {
		if !strings.Contains(header, col) {
			t.Errorf("header missing %q: %s", col, header)
		}
	}

	if !strings.Contains(lines[1], "n/a") {
		t.Errorf("iteration 0 row should carry n/a deltas: %s", lines[1])
	}
	for _, row := range lines[2:] {
		if strings.Contains(row, "n/a") {
			t.Errorf("later rows must have numeric deltas: %s", row)
		}
	}

	if strings.Count(buf.String(), "iter") != 1 {
		t.Error("header must be printed exactly once")
	}
}

func TestReporterRecordsNothing(t *testing.T) {
	p, _ := tlsProblem(50, 2)
	var buf bytes.Buffer
	p.Out = &buf

	result, err := Optimize(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Records) != 0 {
		t.Errorf("default reporter must not append records, got %d", len(result.Records))
	}
}
