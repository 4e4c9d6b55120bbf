package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// ErrBattleRecordNotFound is returned when a record lookup yields no results.
var ErrBattleRecordNotFound = errors.New("battle record not found")

// ErrBattleRecordExists is returned when a session is recorded twice.
var ErrBattleRecordExists = errors.New("battle record already exists")

// BattleRecord is the persisted summary of one finished battle.
type BattleRecord struct {
	// ID is the session id of the battle.
	ID        uuid.UUID
	TroopID   string
	Party     []string
	Result    string
	Outcome   string
	Turns     int
	Exp       int
	Gold      int
	Items     []int
	CreatedAt time.Time
}

// RecordFromSession summarises a reported session fought against troopID.
//
// Precondition: s must be reported.
func RecordFromSession(s *combat.Session, troopID string) BattleRecord {
	if !s.IsReported() {
		panic("postgres: RecordFromSession requires a reported session")
	}
	members := s.Party().BattleMembers()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	reward := s.Rewards()
	items := reward.Items
	if items == nil {
		items = []int{}
	}
	return BattleRecord{
		ID:      s.ID(),
		TroopID: troopID,
		Party:   names,
		Result:  s.Result().String(),
		Outcome: s.Outcome().String(),
		Turns:   s.Troop().TurnCount(),
		Exp:     reward.Exp,
		Gold:    reward.Gold,
		Items:   items,
	}
}

// BattleRecordRepository stores finished battles.
type BattleRecordRepository struct {
	db *pgxpool.Pool
}

// NewBattleRecordRepository creates a repository backed by db.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRecordRepository(db *pgxpool.Pool) *BattleRecordRepository {
	return &BattleRecordRepository{db: db}
}

const battleRecordColumns = `id, troop_id, party, result, outcome, turns, exp, gold, items, created_at`

func scanBattleRecord(row pgx.Row) (*BattleRecord, error) {
	var r BattleRecord
	err := row.Scan(&r.ID, &r.TroopID, &r.Party, &r.Result, &r.Outcome,
		&r.Turns, &r.Exp, &r.Gold, &r.Items, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts rec and returns it with CreatedAt set.
//
// Postcondition: Returns ErrBattleRecordExists when rec.ID is already stored.
func (r *BattleRecordRepository) Create(ctx context.Context, rec BattleRecord) (*BattleRecord, error) {
	out, err := scanBattleRecord(r.db.QueryRow(ctx, `
		INSERT INTO battle_records
			(id, troop_id, party, result, outcome, turns, exp, gold, items)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+battleRecordColumns,
		rec.ID, rec.TroopID, rec.Party, rec.Result, rec.Outcome,
		rec.Turns, rec.Exp, rec.Gold, rec.Items,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrBattleRecordExists
		}
		return nil, fmt.Errorf("inserting battle record: %w", err)
	}
	return out, nil
}

// GetByID retrieves the record of session id.
//
// Postcondition: Returns the record or ErrBattleRecordNotFound.
func (r *BattleRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*BattleRecord, error) {
	out, err := scanBattleRecord(r.db.QueryRow(ctx,
		`SELECT `+battleRecordColumns+` FROM battle_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBattleRecordNotFound
		}
		return nil, fmt.Errorf("querying battle record: %w", err)
	}
	return out, nil
}

// ListByTroop returns up to limit records fought against troopID, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *BattleRecordRepository) ListByTroop(ctx context.Context, troopID string, limit int) ([]*BattleRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+battleRecordColumns+`
		FROM battle_records WHERE troop_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		troopID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle records: %w", err)
	}
	defer rows.Close()

	out := make([]*BattleRecord, 0)
	for rows.Next() {
		rec, err := scanBattleRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle record row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ResultCounts returns how many recorded battles against troopID ended in each result.
func (r *BattleRecordRepository) ResultCounts(ctx context.Context, troopID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT result, COUNT(*) FROM battle_records
		WHERE troop_id = $1 GROUP BY result`,
		troopID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting battle results: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			result string
			n      int
		)
		if err := rows.Scan(&result, &n); err != nil {
			return nil, fmt.Errorf("scanning result count: %w", err)
		}
		counts[result] = n
	}
	return counts, rows.Err()
}
