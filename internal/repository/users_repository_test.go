package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/lib/pq"
	errorvalues "github.com/limbo/worklog/internal/error_values"
	"github.com/limbo/worklog/internal/repository"
	"github.com/limbo/worklog/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/pressly/goose"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	userID = uuid.New()
)

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}

func setupTestDB(t *testing.T) *testPGConfig {
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("worklog"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	connStr, err := container.ConnectionString(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	connStr += "sslmode=disable"
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	err = goose.Up(conn, "../../migrations")
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	return &testPGConfig{
		connStr: connStr,
	}
}

func TestCreateUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewUsersRepoWithConn(mock)
	user := entity.User{
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "pass_hash",
		DisplayName:  "Test User",
	}
	uid := uuid.New()
	ctx := context.Background()
	query := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash, display_name) VALUES ($1, $2, $3, $4) RETURNING id;`)
	t.Run("successfully created", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uid))
		id, err := repo.Create(ctx, &user)
		assert.NoError(t, err)
		assert.Equal(t, uid, id)
	})
	t.Run("email taken", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		_, err := repo.Create(ctx, &user)
		assert.ErrorIs(t, err, errorvalues.ErrEmailExists)
	})
	t.Run("username taken", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
		_, err := repo.Create(ctx, &user)
		assert.ErrorIs(t, err, errorvalues.ErrUsernameExists)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName).
			WillReturnError(errors.New("db error"))
		_, err := repo.Create(ctx, &user)
		assert.Error(t, err)
	})
}

func TestFindUserByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewUsersRepoWithConn(mock)
	user := entity.User{
		ID:           uuid.New(),
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "pass_hash",
		DisplayName:  "Test User",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	query := regexp.QuoteMeta(`SELECT id, username, email, password_hash, display_name, created_at, updated_at FROM users WHERE email = $1;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Email).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "display_name", "created_at", "updated_at"}).
				AddRow(user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.CreatedAt, user.UpdatedAt),
			)
		result, err := repo.FindByEmail(ctx, user.Email)
		assert.NoError(t, err)
		assert.Equal(t, user, *result)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Email).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.FindByEmail(ctx, user.Email)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(user.Email).
			WillReturnError(errors.New("db error"))
		_, err := repo.FindByEmail(ctx, user.Email)
		assert.Error(t, err)
	})
}

func TestUpdateUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewUsersRepoWithConn(mock)
	query := regexp.QuoteMeta(`UPDATE users SET username = $1, email = $2, password_hash = $3, display_name = $4, updated_at = NOW() WHERE id = $5;`)
	user := entity.User{
		ID:           uuid.New(),
		Username:     "test_user",
		Email:        "test@example.com",
		PasswordHash: "pass_hash",
		DisplayName:  "Test User",
	}
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName, user.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.Update(ctx, &user)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName, user.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.Update(ctx, &user)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("username taken", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(user.Username, user.Email, user.PasswordHash, user.DisplayName, user.ID).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
		err := repo.Update(ctx, &user)
		assert.ErrorIs(t, err, errorvalues.ErrUsernameExists)
	})
}

func TestDeleteUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewUsersRepoWithConn(mock)
	query := regexp.QuoteMeta(`DELETE FROM users WHERE id = $1;`)
	ctx := context.Background()
	id := uuid.New()
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		err := repo.Delete(ctx, id)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
}

func TestUsersIntegrational(t *testing.T) {
	cfg := setupTestDB(t)
	repo := repository.NewUsersRepo(cfg)
	ctx := context.Background()
	user := entity.User{
		Username:     "integration_user",
		Email:        "integration@example.com",
		PasswordHash: "pass_hash",
		DisplayName:  "Integration",
	}
	t.Run("create", func(t *testing.T) {
		id, err := repo.Create(ctx, &user)
		assert.NoError(t, err)
		user.ID = id
	})
	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.User{
			Username:     "different_name",
			Email:        user.Email,
			PasswordHash: "pass_hash",
		})
		assert.ErrorIs(t, err, errorvalues.ErrEmailExists)
	})
	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.User{
			Username:     user.Username,
			Email:        "different@example.com",
			PasswordHash: "pass_hash",
		})
		assert.ErrorIs(t, err, errorvalues.ErrUsernameExists)
	})
	t.Run("found by email", func(t *testing.T) {
		result, err := repo.FindByEmail(ctx, user.Email)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, result.ID)
		assert.Equal(t, user.Username, result.Username)
	})
	t.Run("found by id", func(t *testing.T) {
		result, err := repo.FindByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, user.Email, result.Email)
	})
	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("update", func(t *testing.T) {
		user.DisplayName = "Renamed"
		err := repo.Update(ctx, &user)
		assert.NoError(t, err)
		result, err := repo.FindByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Renamed", result.DisplayName)
	})
	t.Run("delete", func(t *testing.T) {
		err := repo.Delete(ctx, user.ID)
		assert.NoError(t, err)
		_, err = repo.FindByID(ctx, user.ID)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
}
