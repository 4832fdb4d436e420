package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/market"
	"github.com/okian/frontoffice/internal/domain/negotiation"
)

// Archive is the durable SQLite record of league state: sessions, signed
// contracts, and per-cycle market results. It is a write-behind archive,
// not the live store; the service snapshots into it and reloads signed
// contracts on start.
type Archive struct {
	conn *sqlx.DB
}

// OpenArchive opens or creates a SQLite archive at the given path.
func OpenArchive(path string) (*Archive, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{conn: conn}
	if err := a.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		player_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		patience INTEGER NOT NULL,
		status TEXT NOT NULL,
		reservation_json TEXT NOT NULL,
		ask_json TEXT NOT NULL,
		history_json TEXT NOT NULL,
		PRIMARY KEY (player_id, team_id)
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		start_year INTEGER NOT NULL,
		end_year INTEGER NOT NULL,
		signing_bonus INTEGER NOT NULL,
		base_json TEXT NOT NULL,
		guarantees_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS market_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle INTEGER NOT NULL,
		player_id TEXT NOT NULL,
		accepted_bid TEXT,
		feedback TEXT NOT NULL,
		trust_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS league_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_team ON contracts(team_id);
	CREATE INDEX IF NOT EXISTS idx_market_results_cycle ON market_results(cycle);
	`
	_, err := a.conn.Exec(schema)
	return err
}

// SaveSessions writes all sessions to the archive (full replace).
func (a *Archive) SaveSessions(sessions []negotiation.Session) error {
	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO sessions
		(player_id, team_id, session_id, round, patience, status,
		 reservation_json, ask_json, history_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range sessions {
		reservationJSON, _ := json.Marshal(s.Reservation)
		askJSON, _ := json.Marshal(s.AskAnchor)
		historyJSON, _ := json.Marshal(s.History)

		_, err := stmt.Exec(
			s.PlayerID, s.TeamID, s.ID.String(), s.Round, s.Patience, string(s.Status),
			string(reservationJSON), string(askJSON), string(historyJSON),
		)
		if err != nil {
			return fmt.Errorf("insert session %s/%s: %w", s.PlayerID, s.TeamID, err)
		}
	}

	return tx.Commit()
}

// SaveContracts writes all signed contracts to the archive (full replace).
func (a *Archive) SaveContracts(contracts []SignedContract) error {
	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM contracts"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO contracts
		(id, player_id, team_id, start_year, end_year, signing_bonus,
		 base_json, guarantees_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sc := range contracts {
		baseJSON, _ := json.Marshal(sc.Contract.BaseSalary)
		guaranteesJSON, _ := json.Marshal(sc.Contract.Guarantees)

		_, err := stmt.Exec(
			sc.ID.String(), sc.Contract.PlayerID, sc.Contract.TeamID,
			sc.Contract.StartYear, sc.Contract.EndYear, sc.Contract.SigningBonus,
			string(baseJSON), string(guaranteesJSON),
		)
		if err != nil {
			return fmt.Errorf("insert contract %s: %w", sc.ID, err)
		}
	}

	return tx.Commit()
}

// AppendMarketResults appends one cycle's clearing results.
func (a *Archive) AppendMarketResults(cycle int, results []market.PlayerResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := a.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range results {
		trustJSON, _ := json.Marshal(r.TrustImpact)
		var accepted any
		if r.AcceptedBidID != nil {
			accepted = r.AcceptedBidID.String()
		}

		_, err := tx.Exec(
			"INSERT INTO market_results (cycle, player_id, accepted_bid, feedback, trust_json) VALUES (?, ?, ?, ?, ?)",
			cycle, r.PlayerID, accepted, r.Feedback, string(trustJSON),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadContracts reads every archived contract, for load-on-start.
func (a *Archive) LoadContracts() ([]SignedContract, error) {
	type row struct {
		ID             string `db:"id"`
		PlayerID       string `db:"player_id"`
		TeamID         string `db:"team_id"`
		StartYear      int    `db:"start_year"`
		EndYear        int    `db:"end_year"`
		SigningBonus   int64  `db:"signing_bonus"`
		BaseJSON       string `db:"base_json"`
		GuaranteesJSON string `db:"guarantees_json"`
	}

	var rows []row
	if err := a.conn.Select(&rows, "SELECT * FROM contracts ORDER BY rowid"); err != nil {
		return nil, err
	}

	out := make([]SignedContract, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("contract id %q: %w", r.ID, err)
		}

		c := contract.Contract{
			PlayerID:     r.PlayerID,
			TeamID:       r.TeamID,
			StartYear:    r.StartYear,
			EndYear:      r.EndYear,
			SigningBonus: r.SigningBonus,
		}
		if err := json.Unmarshal([]byte(r.BaseJSON), &c.BaseSalary); err != nil {
			return nil, fmt.Errorf("contract %s base salaries: %w", r.ID, err)
		}
		if r.GuaranteesJSON != "" && r.GuaranteesJSON != "null" {
			if err := json.Unmarshal([]byte(r.GuaranteesJSON), &c.Guarantees); err != nil {
				return nil, fmt.Errorf("contract %s guarantees: %w", r.ID, err)
			}
		}
		out = append(out, SignedContract{ID: id, Contract: c})
	}
	return out, nil
}

// SaveMeta stores a key-value pair in league metadata.
func (a *Archive) SaveMeta(key, value string) error {
	_, err := a.conn.Exec(
		"INSERT OR REPLACE INTO league_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (a *Archive) GetMeta(key string) (string, error) {
	var value string
	err := a.conn.Get(&value, "SELECT value FROM league_meta WHERE key = ?", key)
	return value, err
}
