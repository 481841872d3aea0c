package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/lead-caller/internal/entity"
)

const leadColumns = `id, name, phone, created_at, status, vapi_call_id, last_event`

// LeadRepository stores leads in Postgres.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	lastEvent, err := encodeLastEvent(lead.LastEvent)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (id, name, phone, created_at, status, vapi_call_id, last_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Phone,
		lead.CreatedAt,
		string(lead.Status),
		nullString(lead.VapiCallID),
		lastEvent,
	)
	if err != nil {
		return fmt.Errorf("database: insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *LeadRepository) FindByCallID(ctx context.Context, callID string) (*entity.Lead, error) {
	if callID == "" {
		return nil, entity.ErrLeadNotFound
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE vapi_call_id = $1 ORDER BY created_at, id LIMIT 1`,
		callID,
	)
	return scanLead(row)
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("database: list leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Update locks the row for the duration of mutate.
func (r *LeadRepository) Update(ctx context.Context, id string, mutate func(*entity.Lead)) (*entity.Lead, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("database: begin: %w", err)
	}
	defer tx.Rollback()

	lead, err := scanLead(tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	mutate(lead)
	lead.ID = id

	lastEvent, err := encodeLastEvent(lead.LastEvent)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE leads
		SET name = $2, phone = $3, status = $4, vapi_call_id = $5, last_event = $6
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		lead.Name,
		lead.Phone,
		string(lead.Status),
		nullString(lead.VapiCallID),
		lastEvent,
	)
	if err != nil {
		return nil, fmt.Errorf("database: update lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("database: commit: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead       entity.Lead
		name       sql.NullString
		status     string
		vapiCallID sql.NullString
		lastEvent  []byte
	)
	err := row.Scan(&lead.ID, &name, &lead.Phone, &lead.CreatedAt, &status, &vapiCallID, &lastEvent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan lead: %w", err)
	}

	if name.Valid {
		lead.Name = &name.String
	}
	lead.Status = entity.LeadStatus(status)
	lead.VapiCallID = vapiCallID.String
	lead.CreatedAt = lead.CreatedAt.UTC()
	if len(lastEvent) > 0 {
		var ev entity.CallEvent
		if err := json.Unmarshal(lastEvent, &ev); err != nil {
			return nil, fmt.Errorf("database: decode last_event: %w", err)
		}
		lead.LastEvent = &ev
	}
	return &lead, nil
}

// encodeLastEvent returns the JSONB parameter as text; lib/pq would send a
// []byte as bytea.
func encodeLastEvent(ev *entity.CallEvent) (any, error) {
	if ev == nil {
		return nil, nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("database: encode last_event: %w", err)
	}
	return string(b), nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
