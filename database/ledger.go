/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// importing the drivers here also registers them with database/sql
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"

	"github.com/blnkfinance/subsync/internal/apierror"
	"github.com/blnkfinance/subsync/model"
)

// GetLedgerEntry retrieves the ledger entry of a subscription.
func (d Datasource) GetLedgerEntry(ctx context.Context, id string) (*model.LedgerEntry, error) {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Fetching ledger entry from db")
	defer span.End()

	entry := &model.LedgerEntry{}
	err := d.Conn.QueryRowContext(ctx, d.rebind(`
		SELECT id, cancelled
		FROM subscription_ledger
		WHERE id = ?
	`), id).Scan(&entry.ID, &entry.Cancelled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("ledger entry with ID '%s' not found", id), err)
		}
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to retrieve ledger entry", err)
	}
	return entry, nil
}

// InsertLedgerEntry records a subscription as forwarded.
func (d Datasource) InsertLedgerEntry(ctx context.Context, id string, cancelled bool) error {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Saving ledger entry to db")
	defer span.End()

	now := time.Now().UTC()
	_, err := d.Conn.ExecContext(ctx, d.rebind(`
		INSERT INTO subscription_ledger (id, cancelled, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`), id, cancelled, now, now)
	if err != nil {
		span.RecordError(err)
		if isDuplicateKey(err) {
			return apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("ledger entry with ID '%s' already exists", id), err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to insert ledger entry", err)
	}
	return nil
}

// UpdateLedgerCancelled sets the cancelled flag. The statement only touches rows that are
// not cancelled yet, so a cancelled entry can never be flipped back to false.
func (d Datasource) UpdateLedgerCancelled(ctx context.Context, id string, cancelled bool) error {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Updating ledger entry")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, d.rebind(`
		UPDATE subscription_ledger
		SET cancelled = ?, updated_at = ?
		WHERE id = ? AND cancelled = ?
	`), cancelled, time.Now().UTC(), id, false)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to update ledger entry", err)
	}
	return nil
}

// DeleteLedgerEntry removes a subscription from the ledger. Deleting an absent ID is not an error.
func (d Datasource) DeleteLedgerEntry(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Deleting ledger entry")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, d.rebind(`DELETE FROM subscription_ledger WHERE id = ?`), id)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to delete ledger entry", err)
	}
	return nil
}

// GetAllLedgerEntries lists ledger entries ordered by ID.
func (d Datasource) GetAllLedgerEntries(ctx context.Context, limit, offset int) ([]model.LedgerEntry, error) {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Fetching ledger entries")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, d.rebind(`
		SELECT id, cancelled
		FROM subscription_ledger
		ORDER BY id
		LIMIT ? OFFSET ?
	`), limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to retrieve ledger entries", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		var entry model.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.Cancelled); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to scan ledger entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "error iterating ledger entries", err)
	}
	return entries, nil
}

func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
