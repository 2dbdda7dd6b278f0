package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// Store is the durable collection behind the task manager.
	// It holds user credentials and task records in a single
	// sqlite database.
	Store struct {
		db        *sql.DB
		writeable bool
	}

	User struct {
		ID           uuid.UUID
		Username     string
		PasswordHash string
	}

	Task struct {
		ID          uuid.UUID
		OwnerID     uuid.UUID
		Title       string
		Description string
		// DueDate uses the YYYY-MM-DD layout, which keeps
		// lexicographic and chronological order identical.
		DueDate   string
		Completed bool
	}
)

func openDatabase(ctx context.Context, dir string, readwrite bool) (*sql.DB, error) {
	dbfile := filepath.Join(dir, "tasks.db")
	if readwrite {
		err := os.MkdirAll(filepath.Dir(dbfile), 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store database, cause %w", dbfile, err)
		}
	}
	var connstr string
	if readwrite {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&_journal=wal&_foreign_keys=true&mode=rwc", dbfile)
	} else {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&_foreign_keys=true&mode=r", dbfile)
	}
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", dbfile, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping database %v, cause %v", dbfile, err)
	}
	return conn, nil
}

func Open(ctx context.Context, dir string, readwrite bool) (*Store, error) {
	conn, err := openDatabase(ctx, dir, readwrite)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, writeable: readwrite}
	err = s.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to init store at %v, cause %v", dir, err)
	}
	return s, nil
}

func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `insert into users (user_id, username, username_hash64, password_hash) values (?, ?, ?, ?)`,
		u.ID.String(), u.Username, hash64(u.Username), u.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return UsernameTaken{Username: u.Username}
		}
		return fmt.Errorf("unable to store user %v, cause %w", u.Username, err)
	}
	return nil
}

func (s *Store) LookupUser(ctx context.Context, username string) (User, error) {
	var u User
	var id string
	err := s.db.QueryRowContext(ctx, `select user_id, username, password_hash from users where username_hash64 = ? and username = ?`,
		hash64(username), username).Scan(&id, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to lookup user %v, cause %w", username, err)
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return User{}, fmt.Errorf("unable to decode id of user %v, cause %w", username, err)
	}
	return u, nil
}

func (s *Store) InsertTask(ctx context.Context, t Task) error {
	_, err := s.db.ExecContext(ctx, `insert into tasks (task_id, owner_id, title, description, due_date, completed) values (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), t.Title, t.Description, t.DueDate, t.Completed)
	if err != nil {
		return fmt.Errorf("unable to store task %v, cause %w", t.ID, err)
	}
	return nil
}

// GetTask loads a task scoped by both id and owner. A task that exists
// but belongs to someone else is indistinguishable from a missing one.
func (s *Store) GetTask(ctx context.Context, taskID, ownerID uuid.UUID) (Task, error) {
	var t Task
	var id, owner string
	err := s.db.QueryRowContext(ctx, `select task_id, owner_id, title, description, due_date, completed from tasks
	where task_id = ? and owner_id = ?`, taskID.String(), ownerID.String()).
		Scan(&id, &owner, &t.Title, &t.Description, &t.DueDate, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, TaskNotFound{ID: taskID}
	} else if err != nil {
		return Task{}, fmt.Errorf("unable to load task %v, cause %w", taskID, err)
	}
	t.ID, t.OwnerID = taskID, ownerID
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `select task_id, title, description, due_date, completed from tasks
	where owner_id = ? order by due_date asc, task_id asc`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("unable to list tasks of %v, cause %w", ownerID, err)
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		t := Task{OwnerID: ownerID}
		var id string
		err = rows.Scan(&id, &t.Title, &t.Description, &t.DueDate, &t.Completed)
		if err != nil {
			return nil, fmt.Errorf("unable to scan task of %v, cause %w", ownerID, err)
		}
		t.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("unable to decode task id %v, cause %w", id, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list tasks of %v, cause %w", ownerID, err)
	}
	return out, nil
}

// UpdateTask overwrites every mutable field of the task, scoped by
// id and owner in a single statement.
func (s *Store) UpdateTask(ctx context.Context, t Task) error {
	res, err := s.db.ExecContext(ctx, `update tasks set title = ?, description = ?, due_date = ?, completed = ?
	where task_id = ? and owner_id = ?`, t.Title, t.Description, t.DueDate, t.Completed, t.ID.String(), t.OwnerID.String())
	if err != nil {
		return fmt.Errorf("unable to update task %v, cause %w", t.ID, err)
	}
	return mustAffectOne(res, t.ID)
}

func (s *Store) DeleteTask(ctx context.Context, taskID, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where task_id = ? and owner_id = ?`,
		taskID.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("unable to delete task %v, cause %w", taskID, err)
	}
	return mustAffectOne(res, taskID)
}

func mustAffectOne(res sql.Result, taskID uuid.UUID) error {
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check result of writing task %v, cause %w", taskID, err)
	}
	if count == 0 {
		return TaskNotFound{ID: taskID}
	}
	return nil
}

func hash64(val string) int64 {
	return int64(xxhash.Sum64String(val))
}

func (s *Store) init(ctx context.Context) error {
	if !s.writeable {
		// read-only connections rely on the schema being there
		return nil
	}
	for _, cmd := range []string{
		`create table if not exists users(
			user_id text not null primary key,
			username text not null unique,
			username_hash64 integer not null,
			password_hash text not null
		)`,
		`create index if not exists idx_users_username_hash64
			on users(username_hash64)
		`,
		`create table if not exists tasks(
			task_id text not null primary key,
			owner_id text not null,
			title text not null,
			description text not null,
			due_date text not null,
			completed integer not null default 0,
			foreign key(owner_id) references users(user_id)
		)`,
		`create index if not exists idx_tasks_owner_due
			on tasks(owner_id, due_date)
		`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
