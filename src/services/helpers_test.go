package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/username/faturamento/backend/src/database"
	"github.com/username/faturamento/backend/src/processors"
)

const extractHeader = "Canal Venda Cliente;Tipo Oper;Nota Fiscal;Dt Emis NF;Receita;Item;Desc Item;Quantidade;Vl Net Livro;Marca"

// Latin-1 bytes: "N\xe3o" is "Não".
var extractRows = []string{
	"VAREJO;1 - Receita;NF1;04/03/2024;Sim;A1;FECHADURA X;10;100.000,00;PAPAIZ",
	"ATACADO;5 - Dev Venda;NF2;05/03/2024;N\xe3o;A1;FECHADURA X;1;5.000,00;PAPAIZ",
	"VAREJO;1 - Receita;NF3;05/03/2024;Sim;B1;TORNEIRA;4;2.500,50;LA FONTE",
	"ATACADO;1 - Receita;NF4;06/03/2024;Sim;C1;CADEADO;2;300,00;YALE",
	"VAREJO;5 - Dev Venda;NF5;06/03/2024;Sim;V1;COFRE;1;700,00;VAULT",
}

func sampleExtract() string {
	return extractHeader + "\r\n" + strings.Join(extractRows, "\r\n") + "\r\n"
}

func march2024() (time.Time, time.Time) {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	dir       string
	store     *DatasetStore
	cutoff    *CutoffStore
	uploads   UploadService
	dashboard DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Open(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	reportCache := NewReportCache(DefaultCacheExpiration, CacheCleanupInterval)
	store := NewDatasetStore(filepath.Join(dir, "Datasets", "ESFT", "ESFT0100_atual.parquet"))
	cutoff := NewCutoffStore(filepath.Join(dir, "cutoff_marcas.json"), db)
	analytics := processors.NewAnalyticsProcessor()

	return &testEnv{
		dir:     dir,
		store:   store,
		cutoff:  cutoff,
		uploads: NewUploadService(processors.NewIngestionProcessor(), store, db, reportCache),
		dashboard: NewDashboardService(store, cutoff, processors.NewRevenueProcessor(), analytics,
			processors.NewReturnsProcessor(analytics), reportCache),
	}
}
