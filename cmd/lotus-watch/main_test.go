package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, s string) status {
	t.Helper()
	var st status
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestPrinter_OnlyChanges(t *testing.T) {
	var buf bytes.Buffer
	p := printer{out: &buf}

	msgs := []string{
		`{"phase":"inhale","mode":"calm","instruction":"Breathe In","face_status":"none"}`,
		`{"phase":"inhale","mode":"calm","instruction":"Breathe In","face_status":"none","elapsed_ms":400}`,
		`{"phase":"hold","mode":"calm","instruction":"Hold","face_status":"none"}`,
		`{"phase":"hold","mode":"calm","instruction":"Hold","face_status":"Face detected"}`,
	}
	for _, m := range msgs {
		p.print(decode(t, m))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("printed %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "hold") || strings.Contains(lines[1], "| ") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "| Face detected") {
		t.Errorf("line 3 = %q", lines[2])
	}
}

func TestStatus_PhaseName(t *testing.T) {
	st := decode(t, `{"phase":"exhale","cycles":2,"cycle_text":"2 cycles"}`)
	if st.Phase != "exhale" || st.Cycles != 2 || st.CycleText != "2 cycles" {
		t.Errorf("status = %+v", st)
	}
}
