package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/abrezinsky/luckydraw/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// A single connection serializes transactions. Code running inside a
	// transaction must use the tx, never r.db, or it will block forever.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS photos (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS draw_configs (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			tiers TEXT NOT NULL,
			max_entries_per_participant INTEGER NOT NULL,
			prevent_duplicate_winners BOOLEAN NOT NULL DEFAULT 1,
			require_photo_upload BOOLEAN NOT NULL DEFAULT 0,
			presentation TEXT,
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			completed_at DATETIME,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS draw_entries (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			config_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			display_name TEXT NOT NULL,
			photo_id TEXT,
			contact TEXT,
			source TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (config_id) REFERENCES draw_configs(id) ON DELETE CASCADE,
			FOREIGN KEY (photo_id) REFERENCES photos(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS draw_winners (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			config_id TEXT NOT NULL,
			execution_id TEXT NOT NULL,
			entry_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			display_name TEXT NOT NULL,
			photo_url TEXT,
			tier_id TEXT NOT NULL,
			tier_name TEXT NOT NULL,
			tier_rank INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			forfeit_reason TEXT,
			replaces_winner_id TEXT,
			drawn_by TEXT NOT NULL,
			drawn_at DATETIME NOT NULL,
			claimed_at DATETIME,
			forfeited_at DATETIME,
			FOREIGN KEY (config_id) REFERENCES draw_configs(id) ON DELETE CASCADE,
			FOREIGN KEY (entry_id) REFERENCES draw_entries(id)
		)`,
		// At most one non-archived configuration per event
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_draw_configs_active
			ON draw_configs(tenant_id, event_id) WHERE status != 'archived'`,
		`CREATE INDEX IF NOT EXISTS idx_events_tenant ON events(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_event ON photos(tenant_id, event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_config ON draw_entries(config_id, fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_winners_config ON draw_winners(config_id, tier_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// requireAffected maps a zero-row conditional update to ErrStatusConflict
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ==================== Event Methods ====================

// CreateEvent inserts a new event
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, tenant_id, name, created_at) VALUES (?, ?, ?, ?)`,
		event.ID, event.TenantID, event.Name, event.CreatedAt)
	return err
}

// GetEvent returns the event identified by scope
func (r *Repository) GetEvent(ctx context.Context, scope models.Scope) (*models.Event, error) {
	var e models.Event
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, created_at FROM events WHERE tenant_id = ? AND id = ?`,
		scope.TenantID, scope.EventID).Scan(&e.ID, &e.TenantID, &e.Name, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns a tenant's events, newest first
func (r *Repository) ListEvents(ctx context.Context, tenantID string) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, created_at FROM events WHERE tenant_id = ? ORDER BY created_at DESC, rowid DESC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ==================== Photo Methods ====================

// CreatePhoto registers a photo reference for an event
func (r *Repository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (id, tenant_id, event_id, url, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		photo.ID, photo.TenantID, photo.EventID, photo.URL, photo.Status, photo.CreatedAt)
	return err
}

// GetPhoto returns a photo of the scoped event
func (r *Repository) GetPhoto(ctx context.Context, scope models.Scope, photoID string) (*models.Photo, error) {
	var p models.Photo
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, event_id, url, status, created_at FROM photos
		WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		scope.TenantID, scope.EventID, photoID).
		Scan(&p.ID, &p.TenantID, &p.EventID, &p.URL, &p.Status, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPhotoStatus updates a photo's moderation status
func (r *Repository) SetPhotoStatus(ctx context.Context, scope models.Scope, photoID string, status models.PhotoStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE photos SET status = ? WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		status, scope.TenantID, scope.EventID, photoID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		if err == ErrStatusConflict {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ==================== Config Methods ====================

const configColumns = `id, tenant_id, event_id, tiers, max_entries_per_participant,
	prevent_duplicate_winners, require_photo_upload, presentation, status,
	created_at, updated_at, completed_at`

func scanConfig(row rowScanner) (*models.DrawConfiguration, error) {
	var (
		c            models.DrawConfiguration
		tiersJSON    string
		presentation sql.NullString
		completedAt  sql.NullTime
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.EventID, &tiersJSON, &c.Rules.MaxEntriesPerParticipant,
		&c.Rules.PreventDuplicateWinners, &c.Rules.RequirePhotoUpload, &presentation, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tiersJSON), &c.Tiers); err != nil {
		return nil, err
	}
	if presentation.Valid {
		c.Presentation = json.RawMessage(presentation.String)
	}
	c.CompletedAt = timePtr(completedAt)
	return &c, nil
}

// GetActiveConfig returns the event's scheduled, in-progress or completed configuration
func (r *Repository) GetActiveConfig(ctx context.Context, scope models.Scope) (*models.DrawConfiguration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM draw_configs
		WHERE tenant_id = ? AND event_id = ? AND status IN ('scheduled', 'in_progress', 'completed')
		ORDER BY created_at DESC LIMIT 1`,
		scope.TenantID, scope.EventID)
	return scanConfig(row)
}

// GetConfig returns a configuration by id regardless of status
func (r *Repository) GetConfig(ctx context.Context, scope models.Scope, configID string) (*models.DrawConfiguration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM draw_configs WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		scope.TenantID, scope.EventID, configID)
	return scanConfig(row)
}

func presentationValue(p json.RawMessage) sql.NullString {
	if len(p) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(p), Valid: true}
}

// CreateConfig inserts a new configuration
func (r *Repository) CreateConfig(ctx context.Context, cfg *models.DrawConfiguration) error {
	tiers, err := json.Marshal(cfg.Tiers)
	if err != nil {
		return err
	}
	ts := now()
	cfg.CreatedAt, cfg.UpdatedAt = ts, ts
	if cfg.Status == "" {
		cfg.Status = models.ConfigScheduled
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO draw_configs (id, tenant_id, event_id, tiers, max_entries_per_participant,
			prevent_duplicate_winners, require_photo_upload, presentation, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID, cfg.TenantID, cfg.EventID, string(tiers), cfg.Rules.MaxEntriesPerParticipant,
		cfg.Rules.PreventDuplicateWinners, cfg.Rules.RequirePhotoUpload, presentationValue(cfg.Presentation),
		cfg.Status, cfg.CreatedAt, cfg.UpdatedAt)
	return err
}

// UpdateScheduledConfig replaces a scheduled configuration's schedule and rules
func (r *Repository) UpdateScheduledConfig(ctx context.Context, cfg *models.DrawConfiguration) error {
	tiers, err := json.Marshal(cfg.Tiers)
	if err != nil {
		return err
	}
	cfg.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE draw_configs SET tiers = ?, max_entries_per_participant = ?, prevent_duplicate_winners = ?,
			require_photo_upload = ?, presentation = ?, updated_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status = 'scheduled'`,
		string(tiers), cfg.Rules.MaxEntriesPerParticipant, cfg.Rules.PreventDuplicateWinners,
		cfg.Rules.RequirePhotoUpload, presentationValue(cfg.Presentation), cfg.UpdatedAt,
		cfg.TenantID, cfg.EventID, cfg.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// TransitionConfigStatus moves a configuration from one status to another
// only if it is currently in the from status.
func (r *Repository) TransitionConfigStatus(ctx context.Context, scope models.Scope, configID string, from, to models.ConfigStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE draw_configs SET status = ?, updated_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status = ?`,
		to, now(), scope.TenantID, scope.EventID, configID, from)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ==================== Entry Methods ====================

// InsertEntryWithinLimit inserts an entry unless the configuration has left
// scheduled or the participant is at the cap
func (r *Repository) InsertEntryWithinLimit(ctx context.Context, entry *models.Entry, limit int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status models.ConfigStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM draw_configs WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		entry.TenantID, entry.EventID, entry.ConfigID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != models.ConfigScheduled {
		return ErrEntriesClosed
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM draw_entries
		WHERE tenant_id = ? AND event_id = ? AND config_id = ? AND fingerprint = ?`,
		entry.TenantID, entry.EventID, entry.ConfigID, entry.Fingerprint).Scan(&count)
	if err != nil {
		return err
	}
	if count >= limit {
		return ErrLimitReached
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO draw_entries (id, tenant_id, event_id, config_id, fingerprint, display_name,
			photo_id, contact, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TenantID, entry.EventID, entry.ConfigID, entry.Fingerprint, entry.DisplayName,
		nullString(entry.PhotoID), nullString(entry.Contact), entry.Source, entry.CreatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListEntries returns a configuration's entries, oldest first, with photo URLs resolved
func (r *Repository) ListEntries(ctx context.Context, scope models.Scope, configID string) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.tenant_id, e.event_id, e.config_id, e.fingerprint, e.display_name,
			COALESCE(e.photo_id, ''), COALESCE(p.url, ''), COALESCE(e.contact, ''), e.source, e.created_at
		FROM draw_entries e
		LEFT JOIN photos p ON p.id = e.photo_id
		WHERE e.tenant_id = ? AND e.event_id = ? AND e.config_id = ?
		ORDER BY e.created_at, e.rowid`,
		scope.TenantID, scope.EventID, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EventID, &e.ConfigID, &e.Fingerprint, &e.DisplayName,
			&e.PhotoID, &e.PhotoURL, &e.Contact, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==================== Winner Methods ====================

const winnerColumns = `id, tenant_id, event_id, config_id, execution_id, entry_id, fingerprint,
	display_name, photo_url, tier_id, tier_name, tier_rank, status, forfeit_reason,
	replaces_winner_id, drawn_by, drawn_at, claimed_at, forfeited_at`

func scanWinner(row rowScanner) (*models.Winner, error) {
	var (
		w                      models.Winner
		photoURL, reason, repl sql.NullString
		claimedAt, forfeitedAt sql.NullTime
	)
	err := row.Scan(&w.ID, &w.TenantID, &w.EventID, &w.ConfigID, &w.ExecutionID, &w.EntryID, &w.Fingerprint,
		&w.DisplayName, &photoURL, &w.TierID, &w.TierName, &w.TierRank, &w.Status, &reason,
		&repl, &w.DrawnBy, &w.DrawnAt, &claimedAt, &forfeitedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	w.PhotoURL = photoURL.String
	w.ForfeitReason = reason.String
	w.ReplacesWinnerID = repl.String
	w.ClaimedAt = timePtr(claimedAt)
	w.ForfeitedAt = timePtr(forfeitedAt)
	return &w, nil
}

func insertWinner(ctx context.Context, tx *sql.Tx, w *models.Winner) error {
	if w.DrawnAt.IsZero() {
		w.DrawnAt = now()
	}
	if w.Status == "" {
		w.Status = models.WinnerPending
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO draw_winners (id, tenant_id, event_id, config_id, execution_id, entry_id, fingerprint,
			display_name, photo_url, tier_id, tier_name, tier_rank, status, replaces_winner_id, drawn_by, drawn_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.TenantID, w.EventID, w.ConfigID, w.ExecutionID, w.EntryID, w.Fingerprint,
		w.DisplayName, nullString(w.PhotoURL), w.TierID, w.TierName, w.TierRank, w.Status,
		nullString(w.ReplacesWinnerID), w.DrawnBy, w.DrawnAt)
	return err
}

// CompleteDraw persists an execution's winners and completes the configuration
func (r *Repository) CompleteDraw(ctx context.Context, scope models.Scope, configID string, winners []models.Winner) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range winners {
		if err := insertWinner(ctx, tx, &winners[i]); err != nil {
			return err
		}
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`UPDATE draw_configs SET status = 'completed', completed_at = ?, updated_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status = 'in_progress'`,
		ts, ts, scope.TenantID, scope.EventID, configID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceWinner forfeits previousID and inserts replacement. The configuration
// must still be completed and the previous winner not already forfeited. The
// replacement must not already hold a live win in the tier, or anywhere in the
// draw when duplicate prevention is on.
func (r *Repository) ReplaceWinner(ctx context.Context, scope models.Scope, previousID, reason string, replacement *models.Winner) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		status     models.ConfigStatus
		preventDup bool
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, prevent_duplicate_winners FROM draw_configs WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		scope.TenantID, scope.EventID, replacement.ConfigID).Scan(&status, &preventDup)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != models.ConfigCompleted {
		return ErrStatusConflict
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE draw_winners SET status = 'forfeited', forfeit_reason = ?, forfeited_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status != 'forfeited'`,
		nullString(reason), now(), scope.TenantID, scope.EventID, previousID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	// Live wins are re-counted under the transaction; the caller's exclusion
	// list may be stale.
	var live int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM draw_winners
		WHERE tenant_id = ? AND event_id = ? AND config_id = ? AND fingerprint = ?
			AND status != 'forfeited' AND (? OR tier_id = ?)`,
		scope.TenantID, scope.EventID, replacement.ConfigID, replacement.Fingerprint,
		preventDup, replacement.TierID).Scan(&live)
	if err != nil {
		return err
	}
	if live > 0 {
		return ErrAlreadyWon
	}

	if err := insertWinner(ctx, tx, replacement); err != nil {
		return err
	}
	return tx.Commit()
}

// GetWinner returns a winner of the scoped event
func (r *Repository) GetWinner(ctx context.Context, scope models.Scope, winnerID string) (*models.Winner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+winnerColumns+` FROM draw_winners WHERE tenant_id = ? AND event_id = ? AND id = ?`,
		scope.TenantID, scope.EventID, winnerID)
	return scanWinner(row)
}

// ListWinners returns a configuration's full winner history in tier order
func (r *Repository) ListWinners(ctx context.Context, scope models.Scope, configID string) ([]models.Winner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+winnerColumns+` FROM draw_winners
		WHERE tenant_id = ? AND event_id = ? AND config_id = ?
		ORDER BY tier_rank, drawn_at, rowid`,
		scope.TenantID, scope.EventID, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	winners := []models.Winner{}
	for rows.Next() {
		w, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		winners = append(winners, *w)
	}
	return winners, rows.Err()
}

// ClaimWinner marks a pending winner as claimed
func (r *Repository) ClaimWinner(ctx context.Context, scope models.Scope, winnerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE draw_winners SET status = 'claimed', claimed_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status = 'pending'`,
		now(), scope.TenantID, scope.EventID, winnerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ForfeitWinner marks a pending or claimed winner as forfeited
func (r *Repository) ForfeitWinner(ctx context.Context, scope models.Scope, winnerID, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE draw_winners SET status = 'forfeited', forfeit_reason = ?, forfeited_at = ?
		WHERE tenant_id = ? AND event_id = ? AND id = ? AND status != 'forfeited'`,
		nullString(reason), now(), scope.TenantID, scope.EventID, winnerID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
