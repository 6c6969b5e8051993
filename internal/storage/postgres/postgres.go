package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/models"
	"polyphona/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres error code for duplicate primary keys.
const uniqueViolation = "23505"

type PgStorage struct {
	conn *pgx.Conn
}

var (
	_ storage.SongStorage  = (*PgStorage)(nil)
	_ storage.UserStorage  = (*PgStorage)(nil)
	_ storage.TokenStorage = (*PgStorage)(nil)
)

func NewPgStorage(conn *pgx.Conn) *PgStorage {
	return &PgStorage{conn: conn}
}

// --- songs ---

// CreateForUser inserts the song and its ownership link in a single
// transaction, so a song can never exist without a link to its creator.
func (s *PgStorage) CreateForUser(ctx context.Context, song *models.Song, username string) (*models.Song, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("PgStorage.CreateForUser - begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := `
        INSERT INTO songs (name, created, updated, tracks_json)
        VALUES ($1, $2, $2, $3)
        RETURNING id, name, created, updated, tracks_json
    `
	var added models.Song
	var tracks string
	err = tx.QueryRow(ctx, query, song.Name, now, string(song.Tracks)).Scan(
		&added.ID, &added.Name, &added.Created, &added.Updated, &tracks,
	)
	if err != nil {
		utils.Logger.Error("PgStorage.CreateForUser - queryRow failed", zap.Error(err))
		return nil, fmt.Errorf("PgStorage.CreateForUser - queryRow failed: %w", err)
	}
	added.Tracks = json.RawMessage(tracks)

	if err := s.createUserLink(ctx, tx, added.ID, username); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("PgStorage.CreateForUser - commit failed: %w", err)
	}
	return &added, nil
}

// createUserLink attaches a song to a user inside the given transaction.
func (s *PgStorage) createUserLink(ctx context.Context, tx pgx.Tx, songID int, username string) error {
	query := `INSERT INTO song_user_links (song_id, username) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, query, songID, username); err != nil {
		utils.Logger.Error("PgStorage.createUserLink - exec failed", zap.Error(err), zap.Int("song_id", songID), zap.String("username", username))
		return fmt.Errorf("PgStorage.createUserLink - exec failed: %w", err)
	}
	return nil
}

func (s *PgStorage) GetByID(ctx context.Context, id int) (*models.Song, error) {
	query := `SELECT id, name, created, updated, tracks_json FROM songs WHERE id = $1`
	var song models.Song
	var tracks string
	err := s.conn.QueryRow(ctx, query, id).Scan(
		&song.ID, &song.Name, &song.Created, &song.Updated, &tracks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.SongNotFound(id)
		}
		utils.Logger.Error("PgStorage.GetByID - queryRow failed", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("PgStorage.GetByID - queryRow failed: %w", err)
	}
	song.Tracks = json.RawMessage(tracks)
	return &song, nil
}

func (s *PgStorage) ListByUser(ctx context.Context, username string) ([]models.Song, error) {
	query := `
        SELECT s.id, s.name, s.created, s.updated, s.tracks_json
        FROM songs s
        JOIN song_user_links l ON s.id = l.song_id
        WHERE l.username = $1
        ORDER BY s.id
    `
	rows, err := s.conn.Query(ctx, query, username)
	if err != nil {
		utils.Logger.Error("PgStorage.ListByUser - query failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("PgStorage.ListByUser - query failed: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var song models.Song
		var tracks string
		if err := rows.Scan(&song.ID, &song.Name, &song.Created, &song.Updated, &tracks); err != nil {
			utils.Logger.Error("PgStorage.ListByUser - rows.Scan failed", zap.Error(err))
			return nil, fmt.Errorf("PgStorage.ListByUser - rows.Scan failed: %w", err)
		}
		song.Tracks = json.RawMessage(tracks)
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Error("PgStorage.ListByUser - rows.Err failed", zap.Error(err))
		return nil, fmt.Errorf("PgStorage.ListByUser - rows.Err failed: %w", err)
	}
	return songs, nil
}

// Update applies existence and ownership as one predicate: a missing song and
// a song owned by someone else produce the same NotFoundError.
func (s *PgStorage) Update(ctx context.Context, id int, name string, tracks []byte, username string) (*models.Song, error) {
	query := `
        UPDATE songs
        SET name = $1, tracks_json = $2, updated = $3
        WHERE id = $4
          AND EXISTS (
            SELECT 1 FROM song_user_links WHERE song_id = $4 AND username = $5
          )
        RETURNING id, name, created, updated, tracks_json
    `
	var updated models.Song
	var updatedTracks string
	err := s.conn.QueryRow(ctx, query, name, string(tracks), time.Now().UTC(), id, username).Scan(
		&updated.ID, &updated.Name, &updated.Created, &updated.Updated, &updatedTracks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.SongNotFoundForUser(id, username)
		}
		utils.Logger.Error("PgStorage.Update - queryRow failed", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("PgStorage.Update - queryRow failed: %w", err)
	}
	updated.Tracks = json.RawMessage(updatedTracks)
	return &updated, nil
}

func (s *PgStorage) Delete(ctx context.Context, id int, username string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("PgStorage.Delete - begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same joined predicate as Update.
	var owned int
	err = tx.QueryRow(ctx, `
        SELECT s.id
        FROM songs s
        JOIN song_user_links l ON s.id = l.song_id
        WHERE s.id = $1 AND l.username = $2
    `, id, username).Scan(&owned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.SongNotFoundForUser(id, username)
		}
		utils.Logger.Error("PgStorage.Delete - ownership check failed", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("PgStorage.Delete - ownership check failed: %w", err)
	}

	// Links first: they reference the song row.
	if _, err := tx.Exec(ctx, `DELETE FROM song_user_links WHERE song_id = $1`, id); err != nil {
		utils.Logger.Error("PgStorage.Delete - delete links failed", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("PgStorage.Delete - delete links failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id); err != nil {
		utils.Logger.Error("PgStorage.Delete - delete song failed", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("PgStorage.Delete - delete song failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("PgStorage.Delete - commit failed: %w", err)
	}
	return nil
}

// --- users ---

// Users are stored with the password as provided. Hashing credentials is a
// known hardening boundary that would change the stored data contract.
func (s *PgStorage) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, first_name, last_name, password) VALUES ($1, $2, $3, $4)`
	_, err := s.conn.Exec(ctx, query, user.Username, user.FirstName, user.LastName, user.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrUserExists
		}
		utils.Logger.Error("PgStorage.Create - exec failed", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("PgStorage.Create - exec failed: %w", err)
	}
	return nil
}

func (s *PgStorage) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.conn.QueryRow(ctx, `SELECT count(username) FROM users WHERE username = $1`, username).Scan(&count)
	if err != nil {
		utils.Logger.Error("PgStorage.Exists - queryRow failed", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("PgStorage.Exists - queryRow failed: %w", err)
	}
	return count > 0, nil
}

func (s *PgStorage) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT username, first_name, last_name FROM users WHERE username = $1`
	var user models.User
	err := s.conn.QueryRow(ctx, query, username).Scan(&user.Username, &user.FirstName, &user.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.UserNotFound(username)
		}
		utils.Logger.Error("PgStorage.GetByUsername - queryRow failed", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("PgStorage.GetByUsername - queryRow failed: %w", err)
	}
	return &user, nil
}

func (s *PgStorage) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	var stored string
	err := s.conn.QueryRow(ctx, `SELECT password FROM users WHERE username = $1`, username).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		utils.Logger.Error("PgStorage.CheckCredentials - queryRow failed", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("PgStorage.CheckCredentials - queryRow failed: %w", err)
	}
	return stored == password, nil
}

// --- tokens ---

func (s *PgStorage) Save(ctx context.Context, username, token string) error {
	refresh := time.Now().UTC().Add(storage.TokenTTL)
	query := `INSERT INTO tokens (token, username, refresh_date) VALUES ($1, $2, $3)`
	if _, err := s.conn.Exec(ctx, query, token, username, refresh); err != nil {
		utils.Logger.Error("PgStorage.Save - exec failed", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("PgStorage.Save - exec failed: %w", err)
	}
	return nil
}

// Resolve does not compare refresh_date against the clock. Expiry is enforced
// only by SweepExpired, so a token past its refresh date keeps resolving
// until the next sweep runs.
func (s *PgStorage) Resolve(ctx context.Context, token string) (string, error) {
	var username string
	err := s.conn.QueryRow(ctx, `SELECT username FROM tokens WHERE token = $1`, token).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.TokenNotFound(token)
		}
		utils.Logger.Error("PgStorage.Resolve - queryRow failed", zap.Error(err))
		return "", fmt.Errorf("PgStorage.Resolve - queryRow failed: %w", err)
	}
	return username, nil
}

func (s *PgStorage) DeleteToken(ctx context.Context, token string) error {
	result, err := s.conn.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		utils.Logger.Error("PgStorage.DeleteToken - exec failed", zap.Error(err))
		return fmt.Errorf("PgStorage.DeleteToken - exec failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.TokenNotFound(token)
	}
	return nil
}

func (s *PgStorage) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.conn.Exec(ctx, `DELETE FROM tokens WHERE refresh_date <= $1`, now)
	if err != nil {
		utils.Logger.Error("PgStorage.SweepExpired - exec failed", zap.Error(err))
		return 0, fmt.Errorf("PgStorage.SweepExpired - exec failed: %w", err)
	}
	return result.RowsAffected(), nil
}
