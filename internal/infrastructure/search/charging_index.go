package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/evcharge/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ChargingIndex mirrors charging records into an Elasticsearch index keyed
// by record id.
type ChargingIndex struct {
	ES   *elasticsearch.Client
	name string
}

func NewChargingIndex(es *elasticsearch.Client, index string) *ChargingIndex {
	return &ChargingIndex{ES: es, name: index}
}

// Name is the Elasticsearch index the records are written to.
func (ix *ChargingIndex) Name() string { return ix.name }

type chargingSource struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicle_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	EnergyUsed    float64   `json:"energy_used"`
	AmountCharged float64   `json:"amount_charged"`
	IsPaid        bool      `json:"is_paid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toSource(r *entity.ChargingRecord) chargingSource {
	return chargingSource{
		ID:            r.ID,
		VehicleID:     r.VehicleID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		EnergyUsed:    r.EnergyUsed,
		AmountCharged: r.AmountCharged,
		IsPaid:        r.IsPaid,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s chargingSource) toEntity() *entity.ChargingRecord {
	return &entity.ChargingRecord{
		ID:            s.ID,
		VehicleID:     s.VehicleID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		EnergyUsed:    s.EnergyUsed,
		AmountCharged: s.AmountCharged,
		IsPaid:        s.IsPaid,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (ix *ChargingIndex) Index(ctx context.Context, r *entity.ChargingRecord) error {
	b, err := json.Marshal(toSource(r))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: ix.name, DocumentID: r.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, ix.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", r.ID, res.Status())
	}
	return nil
}

// SearchByVehicle returns up to size records whose vehicle id matches,
// newest first.
func (ix *ChargingIndex) SearchByVehicle(ctx context.Context, vehicleID string, size int) ([]*entity.ChargingRecord, error) {
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"vehicle_id": map[string]any{"query": vehicleID, "operator": "and"},
			},
		},
		"sort": []any{map[string]any{"created_at": map[string]any{"order": "desc"}}},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(c),
		ix.ES.Search.WithIndex(ix.name),
		ix.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	// A missing index just means nothing has been indexed yet.
	if res.StatusCode == 404 {
		return []*entity.ChargingRecord{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source chargingSource `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.ChargingRecord, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.toEntity())
	}
	return out, nil
}
