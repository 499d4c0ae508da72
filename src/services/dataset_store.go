package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const columnsMetadataKey = "faturamento.columns"

const secondsPerDay = 24 * 60 * 60

type parquetRecord struct {
	EstablishmentCode *string  `parquet:"name=cod_estab, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CompanyName       *string  `parquet:"name=razao_social, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	City              *string  `parquet:"name=cidade, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	State             *string  `parquet:"name=estado, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SalesChannel      *string  `parquet:"name=canal_venda_cliente, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ImplantedAt       *int32   `parquet:"name=dt_implant_ped, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	CustomerOrder     *string  `parquet:"name=ped_cliente, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ERPOrder          *string  `parquet:"name=ped_datasul, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	OperationType     *string  `parquet:"name=tipo_oper, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Series            *string  `parquet:"name=serie, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Invoice           *string  `parquet:"name=nota_fiscal, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TaxNature         *string  `parquet:"name=natureza, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EmittedAt         *int32   `parquet:"name=dt_emis_nf, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	ShippedAt         *int32   `parquet:"name=dt_embarque, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	CreditApprovedAt  *int32   `parquet:"name=dt_aprov_credito, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	Revenue           bool     `parquet:"name=receita, type=BOOLEAN"`
	Item              *string  `parquet:"name=item, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ItemDescription   *string  `parquet:"name=desc_item, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Warehouse         *string  `parquet:"name=deposito, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Quantity          *float64 `parquet:"name=quantidade, type=DOUBLE, repetitiontype=OPTIONAL"`
	NetValue          *float64 `parquet:"name=vl_net_livro, type=DOUBLE, repetitiontype=OPTIONAL"`
	ShipmentNumber    *string  `parquet:"name=nro_embarque, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Brand             *string  `parquet:"name=marca, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	DeliveredAt       *int32   `parquet:"name=dt_entrega, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	OrderStatus       *string  `parquet:"name=situacao_ped, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// DatasetStore keeps the canonical dataset as a single Parquet snapshot.
// Write replaces the file atomically so readers never see a partial snapshot.
type DatasetStore struct {
	path string
	mu   sync.RWMutex
}

func NewDatasetStore(path string) *DatasetStore {
	return &DatasetStore{path: path}
}

func (s *DatasetStore) Path() string { return s.path }

// ModTime returns when the snapshot was last replaced, or ErrEmptyDataset.
func (s *DatasetStore) ModTime() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, ErrEmptyDataset
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Write serializes the dataset next to the target and renames it into place.
// On any failure the previous snapshot is left untouched.
func (s *DatasetStore) Write(ds *models.Dataset) error {
	if ds == nil {
		return fmt.Errorf("%w: nil dataset", ErrPersistenceFailure)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dataset directory: %v", ErrPersistenceFailure, err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.parquet")
	if err != nil {
		return fmt.Errorf("%w: create temp snapshot: %v", ErrPersistenceFailure, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if err := writeSnapshot(tmp, ds); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync snapshot: %v", ErrPersistenceFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close snapshot: %v", ErrPersistenceFailure, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace snapshot: %v", ErrPersistenceFailure, err)
	}
	committed = true

	logger.L.Info("Dataset snapshot written", "path", s.path, "records", len(ds.Records), "columns", len(ds.Columns))
	return nil
}

func writeSnapshot(file *os.File, ds *models.Dataset) error {
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 1)
	if err != nil {
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.RowGroupSize = 64 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	columns := strings.Join(ds.Columns, ",")
	pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &parquet.KeyValue{
		Key:   columnsMetadataKey,
		Value: &columns,
	})

	for i := range ds.Records {
		if err := pw.Write(toParquet(&ds.Records[i])); err != nil {
			pw.WriteStop()
			return fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet flush: %w", err)
	}
	return nil
}

// Read loads the full snapshot. A missing file yields ErrEmptyDataset.
func (s *DatasetStore) Read() (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("stat dataset snapshot: %w", err)
	}

	fr, err := local.NewLocalFileReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset snapshot: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetRecord), 1)
	if err != nil {
		return nil, fmt.Errorf("read dataset schema: %w", err)
	}
	defer pr.ReadStop()

	ds := &models.Dataset{Columns: footerColumns(pr.Footer)}

	num := int(pr.GetNumRows())
	if num == 0 {
		ds.Records = []models.CanonicalRecord{}
		return ds, nil
	}
	rows := make([]parquetRecord, num)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("read dataset rows: %w", err)
	}

	ds.Records = make([]models.CanonicalRecord, num)
	for i := range rows {
		ds.Records[i] = fromParquet(&rows[i])
	}
	return ds, nil
}

func footerColumns(meta *parquet.FileMetaData) []string {
	if meta == nil {
		return nil
	}
	for _, kv := range meta.KeyValueMetadata {
		if kv == nil || kv.Key != columnsMetadataKey || kv.Value == nil {
			continue
		}
		if *kv.Value == "" {
			return []string{}
		}
		return strings.Split(*kv.Value, ",")
	}
	return nil
}

func toParquet(r *models.CanonicalRecord) *parquetRecord {
	return &parquetRecord{
		EstablishmentCode: optString(r.EstablishmentCode),
		CompanyName:       optString(r.CompanyName),
		City:              optString(r.City),
		State:             optString(r.State),
		SalesChannel:      optString(r.SalesChannel),
		ImplantedAt:       optDate(r.ImplantedAt),
		CustomerOrder:     optString(r.CustomerOrder),
		ERPOrder:          optString(r.ERPOrder),
		OperationType:     optString(r.OperationType),
		Series:            optString(r.Series),
		Invoice:           optString(r.Invoice),
		TaxNature:         optString(r.TaxNature),
		EmittedAt:         optDate(r.EmittedAt),
		ShippedAt:         optDate(r.ShippedAt),
		CreditApprovedAt:  optDate(r.CreditApprovedAt),
		Revenue:           r.Revenue,
		Item:              optString(r.Item),
		ItemDescription:   optString(r.ItemDescription),
		Warehouse:         optString(r.Warehouse),
		Quantity:          optFloat(r.Quantity),
		NetValue:          optFloat(r.NetValue),
		ShipmentNumber:    optString(r.ShipmentNumber),
		Brand:             optString(r.Brand),
		DeliveredAt:       optDate(r.DeliveredAt),
		OrderStatus:       optString(r.OrderStatus),
	}
}

func fromParquet(p *parquetRecord) models.CanonicalRecord {
	return models.CanonicalRecord{
		EstablishmentCode: deref(p.EstablishmentCode),
		CompanyName:       deref(p.CompanyName),
		City:              deref(p.City),
		State:             deref(p.State),
		SalesChannel:      deref(p.SalesChannel),
		ImplantedAt:       fromDate(p.ImplantedAt),
		CustomerOrder:     deref(p.CustomerOrder),
		ERPOrder:          deref(p.ERPOrder),
		OperationType:     deref(p.OperationType),
		Series:            deref(p.Series),
		Invoice:           deref(p.Invoice),
		TaxNature:         deref(p.TaxNature),
		EmittedAt:         fromDate(p.EmittedAt),
		ShippedAt:         fromDate(p.ShippedAt),
		CreditApprovedAt:  fromDate(p.CreditApprovedAt),
		Revenue:           p.Revenue,
		Item:              deref(p.Item),
		ItemDescription:   deref(p.ItemDescription),
		Warehouse:         deref(p.Warehouse),
		Quantity:          optFloat(p.Quantity),
		NetValue:          optFloat(p.NetValue),
		ShipmentNumber:    deref(p.ShipmentNumber),
		Brand:             deref(p.Brand),
		DeliveredAt:       fromDate(p.DeliveredAt),
		OrderStatus:       deref(p.OrderStatus),
	}
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// DATE columns hold days since the Unix epoch.
func optDate(t *time.Time) *int32 {
	if t == nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int32(day.Unix() / secondsPerDay)
	return &days
}

func fromDate(days *int32) *time.Time {
	if days == nil {
		return nil
	}
	t := time.Unix(int64(*days)*secondsPerDay, 0).UTC()
	return &t
}
