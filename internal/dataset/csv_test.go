package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

var testSchema = Schema{
	IDColumn:        "Nom_Produit",
	ReferenceColumn: "NutriScore_Lettre",
	Criteria:        []string{"Sucres_g", "Fibres_g"},
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantErr     string
		wantRecords int
	}{
		{
			name:        "happy path",
			csv:         "Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre\nYaourt,4.5,0.1,A\nBiscuit,32,2.1,E\n",
			wantRecords: 2,
		},
		{
			name:        "headers only",
			csv:         "Nom_Produit,Sucres_g\n",
			wantRecords: 0,
		},
		{
			name:    "empty file",
			csv:     "",
			wantErr: "is empty",
		},
		{
			name:    "mismatched column count",
			csv:     "a,b\n1,2\n3\n",
			wantErr: "wrong number of fields",
		},
		{
			name:    "duplicate header",
			csv:     "a,a\n1,2\n",
			wantErr: `duplicate column "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "test.csv", tt.csv)

			file, err := LoadCSV(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, file.Records, tt.wantRecords)
		})
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "p.csv",
		"\ufeffNom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre,Marque\nYaourt,4.5,0.1, A,Danone\nBiscuit,32,2.1,E,LU\n")

	table, err := Load(path, testSchema)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, model.Row{
		ID:        "Yaourt",
		Values:    model.Alternative{"Sucres_g": 4.5, "Fibres_g": 0.1},
		Reference: "A",
	}, table.Rows[0])

	brands, ok := table.Column("Marque")
	require.True(t, ok)
	assert.Equal(t, []string{"Danone", "LU"}, brands)
	assert.Equal(t, []string{"Marque"}, table.ColumnNames())
}

func TestToTable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		errMsg string
	}{
		{
			name:   "missing criterion column",
			csv:    "Nom_Produit,Sucres_g,NutriScore_Lettre\nx,1,A\n",
			errMsg: `column "Fibres_g" not found`,
		},
		{
			name:   "missing reference column",
			csv:    "Nom_Produit,Sucres_g,Fibres_g\nx,1,2\n",
			errMsg: `reference column "NutriScore_Lettre" not found`,
		},
		{
			name:   "empty cell",
			csv:    "Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre\nBiscuit,,2,E\n",
			errMsg: `row "Biscuit", criterion "Sucres_g"`,
		},
		{
			name:   "not a number",
			csv:    "Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre\nBiscuit,12,lots,E\n",
			errMsg: `value "lots"`,
		},
		{
			name:   "infinite value",
			csv:    "Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre\nBiscuit,inf,2,E\n",
			errMsg: `value "inf"`,
		},
		{
			name:   "NaN value",
			csv:    "Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre\nBiscuit,1,NaN,E\n",
			errMsg: `criterion "Fibres_g"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := LoadCSV(writeCSV(t, t.TempDir(), "p.csv", tt.csv))
			require.NoError(t, err)

			_, err = ToTable(file, testSchema)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidData)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestToTable_RowNumbersWithoutIDColumn(t *testing.T) {
	file, err := LoadCSV(writeCSV(t, t.TempDir(), "p.csv", "Sucres_g,Fibres_g,NutriScore_Lettre\n1,2,A\n3,4,B\n"))
	require.NoError(t, err)

	table, err := ToTable(file, testSchema)
	require.NoError(t, err)
	assert.Equal(t, "1", table.Rows[0].ID)
	assert.Equal(t, "2", table.Rows[1].ID)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := model.NewTable([]model.Row{
		{ID: "Yaourt", Values: model.Alternative{"Sucres_g": 4.5, "Fibres_g": 0.1}, Reference: "A"},
		{ID: "Biscuit", Values: model.Alternative{"Sucres_g": 32, "Fibres_g": 2.1}, Reference: "E"},
	})
	require.True(t, table.AddColumn("ELECTRE_Pess_0.6", []string{"B", "E"}))

	out := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteCSV(out, table, testSchema))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"Nom_Produit,Sucres_g,Fibres_g,NutriScore_Lettre,ELECTRE_Pess_0.6\nYaourt,4.5,0.1,A,B\nBiscuit,32,2.1,E,E\n",
		string(data))

	back, err := Load(out, testSchema)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, back.Rows)
	cells, _ := back.Column("ELECTRE_Pess_0.6")
	assert.Equal(t, []string{"B", "E"}, cells)
}
