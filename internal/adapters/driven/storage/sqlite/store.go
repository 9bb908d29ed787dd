package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/orgsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Backend = (*Store)(nil)

// Store is a SQLite-backed driven.Backend.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.orgsync/data/orgsync.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".orgsync", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "orgsync.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
// Each migration records its own version in schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// dbError wraps a database failure as a backend error.
func dbError(op string, err error) error {
	return &domain.BackendError{Message: op + " failed", Details: err.Error()}
}

// ==================== Projects ====================

// SaveProject stores or updates a project keyed by NodeID.
func (s *Store) SaveProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (project_id, node_id, project_name, display_name, avatar_url, provider_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET
			project_name = excluded.project_name,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			provider_type = excluded.provider_type,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
		RETURNING project_id
	`, uuid.NewString(), project.NodeID, project.ProjectName, project.DisplayName, project.AvatarURL,
		string(project.Provider), nullTime(project.CreatedAt), nullTime(project.UpdatedAt))

	if err := row.Scan(&project.ProjectID); err != nil {
		return nil, dbError("saving project", err)
	}
	return &project, nil
}

// ==================== Users ====================

const userColumns = `user_id, project_id, node_id, user_name, display_name, avatar_url, created_at, updated_at`

// ListUsers returns the users of a project in insertion order.
func (s *Store) ListUsers(ctx context.Context, projectID string) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE project_id = ? ORDER BY rowid`, projectID)
	if err != nil {
		return nil, dbError("listing users", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, dbError("listing users", err)
	}
	return users, nil
}

// SaveUsers stores or updates users keyed by project and NodeID.
func (s *Store) SaveUsers(ctx context.Context, projectID string, users []domain.User) (domain.SaveResult, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(project_id, node_id) DO UPDATE SET
				user_name = excluded.user_name,
				display_name = excluded.display_name,
				avatar_url = excluded.avatar_url,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, u := range users {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), projectID, u.NodeID, u.UserName,
				u.DisplayName, u.AvatarURL, nullTime(u.CreatedAt), nullTime(u.UpdatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, dbError("saving users", err)
	}
	return domain.SaveResult{SavedCount: len(users)}, nil
}

func scanUsers(rows *sql.Rows) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&u.UserID, &u.ProjectID, &u.NodeID, &u.UserName, &u.DisplayName,
			&u.AvatarURL, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		u.CreatedAt = timeOf(createdAt)
		u.UpdatedAt = timeOf(updatedAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==================== Teams ====================

// ListTeams returns the teams of a project in insertion order.
func (s *Store) ListTeams(ctx context.Context, projectID string) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, project_id, node_id, team_name, description
		FROM teams WHERE project_id = ? ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, dbError("listing teams", err)
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.TeamID, &t.ProjectID, &t.NodeID, &t.TeamName, &t.Description); err != nil {
			return nil, dbError("listing teams", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("listing teams", err)
	}
	return teams, nil
}

// SaveTeams stores or updates teams keyed by project and NodeID.
func (s *Store) SaveTeams(ctx context.Context, projectID string, teams []domain.Team) (domain.SaveResult, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO teams (team_id, project_id, node_id, team_name, description)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(project_id, node_id) DO UPDATE SET
				team_name = excluded.team_name,
				description = excluded.description
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range teams {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), projectID, t.NodeID, t.TeamName, t.Description); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, dbError("saving teams", err)
	}
	return domain.SaveResult{SavedCount: len(teams)}, nil
}

// ListTeamMembers returns the users that belong to a team.
func (s *Store) ListTeamMembers(ctx context.Context, teamID string) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.project_id, u.node_id, u.user_name, u.display_name, u.avatar_url, u.created_at, u.updated_at
		FROM team_members m JOIN users u ON u.user_id = m.user_id
		WHERE m.team_id = ? ORDER BY m.rowid
	`, teamID)
	if err != nil {
		return nil, dbError("listing team members", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, dbError("listing team members", err)
	}
	return users, nil
}

// SaveTeamMembers stores membership records, ignoring duplicates.
func (s *Store) SaveTeamMembers(ctx context.Context, memberships []domain.TeamMembership) (domain.SaveResult, error) {
	saved := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO team_members (team_id, user_id) VALUES (?, ?)
			ON CONFLICT(team_id, user_id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range memberships {
			res, err := stmt.ExecContext(ctx, m.TeamID, m.UserID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			saved += int(n)
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, dbError("saving team members", err)
	}
	return domain.SaveResult{SavedCount: saved}, nil
}

// ==================== Repositories ====================

// ListRepositories returns the repositories of a project in insertion order.
func (s *Store) ListRepositories(ctx context.Context, projectID string) ([]domain.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code_repository_id, project_id, node_id, name, full_name, default_branch
		FROM repositories WHERE project_id = ? ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, dbError("listing repositories", err)
	}
	defer rows.Close()

	repos := make([]domain.Repository, 0)
	for rows.Next() {
		var r domain.Repository
		if err := rows.Scan(&r.CodeRepositoryID, &r.ProjectID, &r.NodeID, &r.CodeRepositoryName,
			&r.FullName, &r.DefaultBranch); err != nil {
			return nil, dbError("listing repositories", err)
		}
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("listing repositories", err)
	}
	return repos, nil
}

// SaveRepositories stores or updates repositories keyed by project and NodeID.
func (s *Store) SaveRepositories(ctx context.Context, projectID string, repos []domain.Repository) (domain.SaveResult, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO repositories (code_repository_id, project_id, node_id, name, full_name, default_branch)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(project_id, node_id) DO UPDATE SET
				name = excluded.name,
				full_name = excluded.full_name,
				default_branch = excluded.default_branch
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range repos {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), projectID, r.NodeID, r.CodeRepositoryName,
				r.FullName, r.DefaultBranch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, dbError("saving repositories", err)
	}
	return domain.SaveResult{SavedCount: len(repos)}, nil
}

// ==================== Pull Requests ====================

const pullRequestColumns = `node_id, number, state, created_at, updated_at, merged_at, closed_at,
	code_repository_id, project_id, user_id, commits, additions, deletions, changed_files`

// ListPullRequests returns the pull requests of a repository in insertion order.
func (s *Store) ListPullRequests(ctx context.Context, repoID string) ([]domain.PullRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pullRequestColumns+` FROM pull_requests WHERE code_repository_id = ? ORDER BY rowid`, repoID)
	if err != nil {
		return nil, dbError("listing pull requests", err)
	}
	defer rows.Close()

	prs := make([]domain.PullRequest, 0)
	for rows.Next() {
		pr, err := scanPullRequest(rows)
		if err != nil {
			return nil, dbError("listing pull requests", err)
		}
		prs = append(prs, *pr)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("listing pull requests", err)
	}
	return prs, nil
}

// LastPullRequest returns the most recently created pull request of a
// repository, or nil when it has none.
func (s *Store) LastPullRequest(ctx context.Context, repoID string) (*domain.PullRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pullRequestColumns+` FROM pull_requests
		WHERE code_repository_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, repoID)

	pr, err := scanPullRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("getting last pull request", err)
	}
	return pr, nil
}

// SavePullRequests appends pull requests. A pull request whose NodeID is
// already stored for the same repository is skipped.
func (s *Store) SavePullRequests(ctx context.Context, prs []domain.PullRequest) (domain.SaveResult, error) {
	saved := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pull_requests (`+pullRequestColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(code_repository_id, node_id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, pr := range prs {
			var userID sql.NullString
			if pr.UserID != nil {
				userID = sql.NullString{String: *pr.UserID, Valid: true}
			}
			res, err := stmt.ExecContext(ctx, pr.NodeID, pr.Number, pr.State,
				pr.CreatedAt.UTC(), nullTime(pr.UpdatedAt), nullTimePtr(pr.MergedAt), nullTimePtr(pr.ClosedAt),
				pr.CodeRepositoryID, pr.ProjectID, userID,
				pr.Commits, pr.Additions, pr.Deletions, pr.ChangedFiles)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			saved += int(n)
		}
		return nil
	})
	if err != nil {
		return domain.SaveResult{}, dbError("saving pull requests", err)
	}
	return domain.SaveResult{SavedCount: saved}, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPullRequest(row scanner) (*domain.PullRequest, error) {
	var pr domain.PullRequest
	var createdAt, updatedAt, mergedAt, closedAt sql.NullTime
	var userID sql.NullString
	if err := row.Scan(&pr.NodeID, &pr.Number, &pr.State, &createdAt, &updatedAt, &mergedAt, &closedAt,
		&pr.CodeRepositoryID, &pr.ProjectID, &userID,
		&pr.Commits, &pr.Additions, &pr.Deletions, &pr.ChangedFiles); err != nil {
		return nil, err
	}

	pr.CreatedAt = timeOf(createdAt)
	pr.UpdatedAt = timeOf(updatedAt)
	pr.MergedAt = timePtrOf(mergedAt)
	pr.ClosedAt = timePtrOf(closedAt)
	if userID.Valid {
		id := userID.String
		pr.UserID = &id
	}
	return &pr, nil
}

// ==================== Helpers ====================

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

func timeOf(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

func timePtrOf(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
