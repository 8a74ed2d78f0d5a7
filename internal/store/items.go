package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

const itemColumns = `id, name, condition, category, price, description, image_key, created_at`

// CreateItem inserts a validated item whose image is already stored under imageKey.
func CreateItem(ctx context.Context, db *sql.DB, form model.FormState, imageKey string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, condition, category, price, description, image_key)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		form.Name, string(form.Condition), string(form.Category), form.Price, form.Description, imageKey,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items newest first, optionally filtered by category.
func ListItems(ctx context.Context, db *sql.DB, category string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if category != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY id DESC`, category,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	var item model.Item
	var condition, category, price string
	if err := s.Scan(&item.ID, &item.Name, &condition, &category, &price, &item.Description, &item.ImageKey, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Condition = model.Condition(condition)
	item.Category = model.Category(category)
	item.Price = model.Price(price)
	return &item, nil
}
