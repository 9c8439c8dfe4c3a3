package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if isNoRows(err) {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, storageError("find user", err)
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m := domain.User{
		ID:           user.ID,
		Email:        user.Email,
		Nickname:     user.Nickname,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrConflict
		}
		return domain.User{}, storageError("create user", err)
	}
	return m, nil
}
