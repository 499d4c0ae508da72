package processors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/faturamento/backend/src/models"
)

func sampleTable() *models.RawTable {
	return &models.RawTable{
		Headers: []string{
			"Cod Estab", "Canal Venda Cliente", "Dt Implant Ped", "Ped Cliente", "Tipo Oper", "Serie",
			"Nota Fiscal", "Dt Emis NF", "Dt Embarque", "Dt Aprov. Credito", "Receita", "Item",
			"Desc Item", "Deposito", "Quantidade", "Vl Net Livro", "Nro Embarque", "Marca", "Ignored",
		},
		Rows: [][]string{
			{"1", "VAREJO", "01/03/2024", "PC-1", "1 - Receita", " 001 ", "NF1", "04/03/2024", "03/03/2024", "", "Sim", "A1", "FECHADURA", "D1", "10", "1.000,50", "E1", "PAPAIZ", "x"},
			{"1", "", "02/03/2024", "", "1 - Receita", "1", "NF2", "", "05/03/2024", "02/03/2024", "Não", "A2", "CADEADO", "", "-3", "-200,00", "", "SILVANA CDSP", "x"},
			{"1", "ATACADO", "03/03/2024", "PC-3", "5 - Dev Venda", "1", "NF3", "06/03/2024", "", "", "talvez", "A1", "FECHADURA", "D2", "1", "abc", "E3", "YALE", "x"},
			{"1", "ATACADO", "", "PC-4", "1 - Receita", "1", "NF4", "07/03/2024", "", "", "", "A3", "PORTA", "D2", "2", "50", "E4", "METALIKA", "x"},
			{"1", "ATACADO", "", "PC-5", "1 - Receita", "1", "NF5", "08/03/2024", "", "", "", "A4", "TRINCO", "D2", "", "", "E5", "", "x"},
		},
	}
}

func TestIngestionProcessorPipeline(t *testing.T) {
	res, err := NewIngestionProcessor().Process(sampleTable())
	require.NoError(t, err)

	ds := res.Dataset
	assert.NotContains(t, ds.Columns, "ignored")
	assert.Contains(t, ds.Columns, ColDeliveredAt, "delivery column is created by the cascade")
	assert.Equal(t, 2, res.Stats.DroppedRows, "YALE and METALIKA rows are denied")
	require.Len(t, ds.Records, 3)

	first := ds.Records[0]
	assert.Equal(t, "001", first.Series)
	assert.Equal(t, "PAPAIZ", first.Brand)
	assert.True(t, first.Revenue)
	assert.InDelta(t, 1000.50, *first.NetValue, 1e-9)
	assert.InDelta(t, 10, *first.Quantity, 1e-9)
	require.NotNil(t, first.CreditApprovedAt)
	assert.Equal(t, *day(2024, 3, 1), *first.CreditApprovedAt, "approval falls back to implantation")
	require.NotNil(t, first.DeliveredAt)
	assert.Equal(t, *day(2024, 3, 1), *first.DeliveredAt, "delivery falls back through approval")

	second := ds.Records[1]
	assert.Equal(t, "SILVANA", second.Brand)
	assert.False(t, second.Revenue)
	assert.Equal(t, "Unknown", second.SalesChannel)
	assert.Equal(t, "No Order", second.CustomerOrder)
	assert.Equal(t, "Not Informed", second.Warehouse)
	assert.Equal(t, "No Shipment", second.ShipmentNumber)
	assert.InDelta(t, 200, *second.NetValue, 1e-9)
	assert.InDelta(t, 3, *second.Quantity, 1e-9)
	require.NotNil(t, second.EmittedAt)
	assert.Equal(t, *day(2024, 3, 5), *second.EmittedAt, "emission falls back to shipment")

	third := ds.Records[2]
	assert.Equal(t, "", third.Brand, "missing brand is kept but ungrouped")
	assert.Nil(t, third.NetValue)
	assert.Nil(t, third.Quantity)
}

func TestIngestionProcessorCountsDegradedCells(t *testing.T) {
	table := &models.RawTable{
		Headers: []string{"Marca", "Vl Net Livro", "Dt Emis NF"},
		Rows: [][]string{
			{"PAPAIZ", "abc", "01/03/2024"},
			{"PAPAIZ", "10", "2024-03-02"},
		},
	}
	res, err := NewIngestionProcessor().Process(table)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.UnparsedAmounts)
	assert.Equal(t, 1, res.Stats.UnparsedDates)
	assert.ElementsMatch(t, []string{ColOperationType}, res.Validation.MissingRequired)
}

func TestIngestionProcessorAbsoluteValues(t *testing.T) {
	res, err := NewIngestionProcessor().Process(sampleTable())
	require.NoError(t, err)
	for _, rec := range res.Dataset.Records {
		if rec.NetValue != nil {
			assert.GreaterOrEqual(t, *rec.NetValue, 0.0)
		}
		if rec.Quantity != nil {
			assert.GreaterOrEqual(t, *rec.Quantity, 0.0)
		}
	}
}

func TestIngestionProcessorSchemaMismatch(t *testing.T) {
	_, err := NewIngestionProcessor().Process(&models.RawTable{
		Headers: []string{"foo", "bar"},
		Rows:    [][]string{{"1", "2"}},
	})
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	_, err = NewIngestionProcessor().Process(nil)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestIngestionProcessorCascadeGates(t *testing.T) {
	// approval without implantation: chain 1 is skipped, chain 3 lacks shipment
	table := &models.RawTable{
		Headers: []string{"Dt Aprov. Credito", "Dt Emis NF", "Marca"},
		Rows:    [][]string{{"", "", "VAULT"}, {"10/03/2024", "", "VAULT"}},
	}
	res, err := NewIngestionProcessor().Process(table)
	require.NoError(t, err)
	recs := res.Dataset.Records
	assert.Nil(t, recs[0].CreditApprovedAt)
	assert.Nil(t, recs[0].DeliveredAt)
	require.NotNil(t, recs[1].DeliveredAt)
	assert.Equal(t, time.March, recs[1].DeliveredAt.Month())
	assert.Nil(t, recs[1].EmittedAt)
}

func TestIngestionProcessorDeterministic(t *testing.T) {
	a, err := NewIngestionProcessor().Process(sampleTable())
	require.NoError(t, err)
	b, err := NewIngestionProcessor().Process(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, a.Dataset, b.Dataset)
}
