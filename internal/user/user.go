// internal/user/user.go
//
// CMS accounts.
//
// Context
// -------
// Accounts live in lin_user:
//
//	lin_user (id PK, nickname UNIQUE, group_id, email, password, admin,
//	          active, create_time, update_time, delete_time)
//
// Passwords are stored as bcrypt hashes and never leave this package in
// clear text.  admin is 2 for super administrators and 1 for everyone else;
// super administrators bypass group permissions in acl.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Admin levels.
const (
	LevelCommon = 1
	LevelSuper  = 2
)

var (
	// ErrNotFound is returned when no live user matches.
	ErrNotFound = errors.New("user: not found")
	// ErrNicknameTaken is returned by Create on a duplicate nickname.
	ErrNicknameTaken = errors.New("user: nickname taken")
	// ErrPassword is returned by Authenticate on a wrong password.
	ErrPassword = errors.New("user: wrong password")
)

// User mirrors one row of lin_user.
type User struct {
	ID         int64          `db:"id"          json:"id"`
	Nickname   string         `db:"nickname"    json:"nickname"`
	GroupID    sql.NullInt64  `db:"group_id"    json:"-"`
	Email      sql.NullString `db:"email"       json:"-"`
	Password   string         `db:"password"    json:"-"`
	Admin      int            `db:"admin"       json:"admin"`
	Active     int            `db:"active"      json:"active"`
	CreateTime time.Time      `db:"create_time" json:"create_time"`
	UpdateTime time.Time      `db:"update_time" json:"update_time"`
}

// IsSuper reports whether u is a super administrator.
func (u *User) IsSuper() bool { return u.Admin == LevelSuper }

// View is the JSON shape handlers return.
type View struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	GroupID  *int64 `json:"group_id"`
	Email    string `json:"email,omitempty"`
	Admin    int    `json:"admin"`
	Active   int    `json:"active"`
}

// View strips the hash and flattens nullable columns.
func (u *User) View() View {
	v := View{
		ID:       u.ID,
		Nickname: u.Nickname,
		Email:    u.Email.String,
		Admin:    u.Admin,
		Active:   u.Active,
	}
	if u.GroupID.Valid {
		g := u.GroupID.Int64
		v.GroupID = &g
	}
	return v
}

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches u's hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// NewUser is the input of Create.
type NewUser struct {
	Nickname string
	Password string
	GroupID  int64
	Email    string
}

const selectUser = `SELECT id, nickname, group_id, email, password, admin, active,
                           create_time, update_time
                      FROM lin_user`

// Store reads and writes lin_user.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db, now: time.Now} }

// ByID returns the live user with id.
func (s *Store) ByID(ctx context.Context, id int64) (*User, error) {
	return s.one(ctx, selectUser+` WHERE id = ? AND delete_time IS NULL`, id)
}

// ByNickname returns the live user called nickname.
func (s *Store) ByNickname(ctx context.Context, nickname string) (*User, error) {
	return s.one(ctx, selectUser+` WHERE nickname = ? AND delete_time IS NULL`, nickname)
}

func (s *Store) one(ctx context.Context, q string, arg any) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate returns the user when nickname and password match.
func (s *Store) Authenticate(ctx context.Context, nickname, password string) (*User, error) {
	u, err := s.ByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrPassword
	}
	return u, nil
}

// Create inserts a common user and returns its id.
func (s *Store) Create(ctx context.Context, in NewUser) (int64, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	var email any
	if in.Email != "" {
		email = in.Email
	}
	now := s.now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lin_user (nickname, group_id, email, password, admin, active, create_time, update_time)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		in.Nickname, in.GroupID, email, hash, LevelCommon, now, now)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrNicknameTaken
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Update changes the group and, when email is non-nil, the email of user id.
// groupID 0 leaves the group untouched.
func (s *Store) Update(ctx context.Context, id, groupID int64, email *string) error {
	b := sq.Update("lin_user").
		Set("update_time", s.now()).
		Where(sq.Eq{"id": id, "delete_time": nil})
	if groupID > 0 {
		b = b.Set("group_id", groupID)
	}
	if email != nil {
		b = b.Set("email", *email)
	}
	q, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SetPassword replaces the hash of user id.
func (s *Store) SetPassword(ctx context.Context, id int64, plain string) error {
	hash, err := HashPassword(plain)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE lin_user SET password = ?, update_time = ? WHERE id = ? AND delete_time IS NULL`,
		hash, s.now(), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
