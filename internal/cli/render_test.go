package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
	"github.com/Veraticus/nutrisort/internal/testutil"
)

func evaluateLadder(t *testing.T, progress *RunProgress) *electre.Result {
	t.Helper()
	registry, err := electre.NewRegistry(
		[]string{"X", "Y"},
		map[string]model.Direction{"X": model.Maximize, "Y": model.Minimize},
		map[string]float64{"X": 1, "Y": 1},
		nil,
	)
	require.NoError(t, err)

	table := testutil.NewProductBuilder(t, "X", "Y").
		WithLadder(10, map[string]bool{"X": true}, "A", "B", "C", "D", "E").
		Build()

	cfg := electre.EvaluationConfig{
		Registry:        registry,
		Categories:      []string{"E", "D", "C", "B", "A"},
		ReferenceLabels: []string{"A", "B", "C", "D", "E"},
		Lambdas:         []float64{0.6},
	}
	if progress != nil {
		cfg.OnRunDone = progress.Done
	}
	res, err := electre.Evaluate(context.Background(), table, cfg)
	require.NoError(t, err)
	return res
}

func TestRenderConfusion(t *testing.T) {
	ct := model.NewConfusionTable([]string{"A", "B"}, []string{"B", "A"})
	ct.Add("A", "A")
	ct.Add("A", "A")
	ct.Add("A", "B")
	ct.Add("B", "B")

	out := RenderConfusion(ct)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, []string{"ref", "B", "A", "total"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"A", "1", "2", "3"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"B", "1", "0", "1"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"total", "2", "2", "4"}, strings.Fields(lines[3]))
}

func TestRenderRun(t *testing.T) {
	ct := model.NewConfusionTable([]string{"A"}, []string{"A"})
	ct.Add("A", "A")
	ct.Add("A", "Z")

	tests := []struct {
		name     string
		expected []string
		skipped  bool
	}{
		{name: "added", expected: []string{"ELECTRE_Pess_0.6", "agreement 100.0%", "1 unmatched"}},
		{name: "skipped", skipped: true, expected: []string{"existing column tabulated as found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderRun("ELECTRE_Pess_0.6", ct, tt.skipped)
			for _, want := range tt.expected {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRenderProfile(t *testing.T) {
	res := evaluateLadder(t, nil)

	out, err := RenderProfile(res.Profile, res.Criteria)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"pi1", "pi2", "pi3", "pi4", "pi5", "pi6"}, strings.Fields(lines[0]))

	x := strings.Fields(lines[1])
	require.Len(t, x, 7)
	assert.Equal(t, "X", x[0])
	assert.Equal(t, "2.8", x[2])
	assert.Equal(t, "8.2", x[5])

	y := strings.Fields(lines[2])
	require.Len(t, y, 7)
	assert.Equal(t, "Y", y[0])
	assert.Equal(t, "8.2", y[2])
	assert.Equal(t, "2.8", y[5])

	_, err = RenderProfile(res.Profile, []string{"Z"})
	assert.Error(t, err)
}

func TestRenderAssignments(t *testing.T) {
	out := RenderAssignments(
		[]string{"ELECTRE_Pess_0.6", "ELECTRE_Opt_0.6"},
		map[string]string{"ELECTRE_Pess_0.6": "C", "ELECTRE_Opt_0.6": "B"},
	)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ELECTRE_Pess_0.6", "C"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ELECTRE_Opt_0.6", "B"}, strings.Fields(lines[1]))
}

func TestRunProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := NewRunProgress(&buf, 2)

	res := evaluateLadder(t, progress)

	assert.ElementsMatch(t, res.Names(), progress.Finished())
}

func TestNewReport(t *testing.T) {
	res := evaluateLadder(t, nil)

	report, err := NewReport("ladder.csv", res)
	require.NoError(t, err)

	assert.Equal(t, "ladder.csv", report.Dataset)
	assert.Equal(t, 10, report.Rows)
	assert.Equal(t, []string{"X", "Y"}, report.Criteria)
	require.Len(t, report.Profile, electre.ProfileCount)
	assert.Equal(t, "pi1", report.Profile[0].Boundary)
	assert.Equal(t, "pi6", report.Profile[5].Boundary)

	require.Len(t, report.Runs, 2)
	assert.Equal(t, "ELECTRE_Pess_0.6", report.Runs[0].Name)
	assert.Equal(t, "Pess", report.Runs[0].Procedure)
	assert.Equal(t, "ELECTRE_Opt_0.6", report.Runs[1].Name)
	for _, run := range report.Runs {
		total := 0
		for _, row := range run.Confusion {
			for _, n := range row {
				total += n
			}
		}
		assert.Equal(t, 10, total, run.Name)
		assert.Equal(t, []string{"E", "D", "C", "B", "A"}, run.Categories)
	}
}

func TestWriteReport(t *testing.T) {
	res := evaluateLadder(t, nil)
	report, err := NewReport("ladder.csv", res)
	require.NoError(t, err)

	tests := []struct {
		decode  func([]byte, any) error
		name    string
		format  string
		wantErr bool
	}{
		{name: "json", format: FormatJSON, decode: json.Unmarshal},
		{name: "yaml", format: FormatYAML, decode: yaml.Unmarshal},
		{name: "table is not an encoding", format: FormatTable, wantErr: true},
		{name: "unknown", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteReport(&buf, tt.format, report)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var decoded Report
			require.NoError(t, tt.decode(buf.Bytes(), &decoded))
			assert.Equal(t, *report, decoded)
		})
	}
}
