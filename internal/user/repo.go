package user

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound reports a lookup with no matching account.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken and ErrEmailTaken report uniqueness violations.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")

	ErrInvalidUsername = errors.New("invalid username: must be 3-20 characters of letters, numbers and underscores")
	ErrInvalidEmail    = errors.New("invalid email format")
)

// Alphanumeric and underscores, 3-20 characters.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Rejects comma-separated address lists, which some form inputs allow.
var emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")

// Repo handles database operations for user accounts.
type Repo struct {
	db     *sql.DB
	hasher Hasher
}

// NewRepo creates a new user repository.
func NewRepo(db *sql.DB, hasher Hasher) *Repo {
	return &Repo{db: db, hasher: hasher}
}

// Create validates and inserts a new account with a hashed password.
// A username or email already in use fails with ErrUsernameTaken or
// ErrEmailTaken respectively.
func (r *Repo) Create(username, email, password, fullName, phone string) (*User, error) {
	if !usernameRe.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return nil, fmt.Errorf("check username %s: %w", username, err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return nil, fmt.Errorf("check email %s: %w", email, err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := r.hasher.Hash(password, username)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(`
		INSERT INTO users (username, email, password_hash, full_name, phone)
		VALUES (?, ?, ?, ?, ?)
	`, username, email, hash, fullName, phone)
	if err != nil {
		// Concurrent creates can slip past the COUNT checks; the UNIQUE
		// constraints are the authority.
		return nil, mapUniqueViolation(err, username, email)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get user id: %w", err)
	}

	return r.GetByID(int(id))
}

func mapUniqueViolation(err error, username, email string) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	default:
		return fmt.Errorf("create user %s: %w", username, err)
	}
}

// Authenticate checks an identifier (username or email) and password against
// stored records. The hash is recomputed from the supplied identifier, so a
// caller must log in with the same string the hash was derived from.
func (r *Repo) Authenticate(identifier, password string) (bool, error) {
	byName, err := r.GetByUsername(identifier)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if byName != nil && r.hasher.Compare(byName.PasswordHash, password, identifier) {
		return true, nil
	}

	byEmail, err := r.GetByEmail(identifier)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if byEmail != nil && r.hasher.Compare(byEmail.PasswordHash, password, identifier) {
		return true, nil
	}

	return false, nil
}

// GetByID retrieves a user by ID.
func (r *Repo) GetByID(id int) (*User, error) {
	return r.get("SELECT id, username, email, password_hash, full_name, phone, created_at FROM users WHERE id = ?", id)
}

// GetByUsername retrieves a user by username.
func (r *Repo) GetByUsername(username string) (*User, error) {
	return r.get("SELECT id, username, email, password_hash, full_name, phone, created_at FROM users WHERE username = ?", username)
}

// GetByEmail retrieves a user by email.
func (r *Repo) GetByEmail(email string) (*User, error) {
	return r.get("SELECT id, username, email, password_hash, full_name, phone, created_at FROM users WHERE email = ?", email)
}

func (r *Repo) get(query string, arg any) (*User, error) {
	u := &User{}
	var created sql.NullTime

	err := r.db.QueryRow(query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %v: %w", arg, err)
	}

	if created.Valid {
		u.CreatedAt = created.Time
	}

	return u, nil
}

// Count returns the number of stored accounts.
func (r *Repo) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpdateProfile updates a user's display fields.
func (r *Repo) UpdateProfile(id int, fullName, phone string) error {
	_, err := r.db.Exec(`
		UPDATE users SET full_name = ?, phone = ? WHERE id = ?
	`, fullName, phone, id)
	return err
}

// UpdateEmail changes a user's email address.
func (r *Repo) UpdateEmail(id int, email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	_, err := r.db.Exec("UPDATE users SET email = ? WHERE id = ?", email, id)
	if err != nil && strings.Contains(err.Error(), "users.email") {
		return ErrEmailTaken
	}
	return err
}

// UpdatePassword changes a user's password. The stored username is the hash
// component, so a password set here verifies with username logins.
func (r *Repo) UpdatePassword(id int, newPassword string) error {
	u, err := r.GetByID(id)
	if err != nil {
		return err
	}
	hash, err := r.hasher.Hash(newPassword, u.Username)
	if err != nil {
		return err
	}
	_, err = r.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	return err
}
