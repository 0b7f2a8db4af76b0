package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pocketbase/dbx"

	_ "modernc.org/sqlite"
)

const accountsTable = "accounts"

const createAccountsTableSQL = `
CREATE TABLE IF NOT EXISTS ` + accountsTable + ` (
	ilp_address TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	chain_addr  TEXT NOT NULL,
	asset_code  TEXT NOT NULL,
	asset_scale INTEGER NOT NULL
)`

// Store persists accounts in a SQLite database, queried through dbx the
// way the teacher's own transitive pocketbase dependency does — without
// pulling in pocketbase's application framework, just its query builder
// and driver.
type Store struct {
	db *dbx.DB
}

// Open opens (creating if necessary) the SQLite database at dsn and
// ensures the accounts table exists.
func Open(dsn string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", dsn, err)
	}

	db := dbx.NewFromDB(sqlDB, "sqlite")
	if _, err := db.NewQuery(createAccountsTableSQL).Execute(); err != nil {
		return nil, fmt.Errorf("store: creating accounts table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type accountRow struct {
	ILPAddress string `db:"ilp_address"`
	Kind       string `db:"kind"`
	ChainAddr  string `db:"chain_addr"`
	AssetCode  string `db:"asset_code"`
	AssetScale uint8  `db:"asset_scale"`
}

func toRow(a Account) accountRow {
	row := accountRow{
		ILPAddress: a.ILPAddress,
		Kind:       string(a.Kind),
		AssetCode:  a.AssetCode,
		AssetScale: a.AssetScale,
	}
	switch a.Kind {
	case KindEVM:
		row.ChainAddr = a.EVMAddress.Hex()
	case KindSVM:
		row.ChainAddr = a.SVMAddress.String()
	}
	return row
}

func fromRow(row accountRow) (Account, error) {
	a := Account{
		ILPAddress: row.ILPAddress,
		Kind:       Kind(row.Kind),
		AssetCode:  row.AssetCode,
		AssetScale: row.AssetScale,
	}
	switch a.Kind {
	case KindEVM:
		if !common.IsHexAddress(row.ChainAddr) {
			return Account{}, fmt.Errorf("store: malformed EVM address %q for %s", row.ChainAddr, row.ILPAddress)
		}
		a.EVMAddress = common.HexToAddress(row.ChainAddr)
	case KindSVM:
		pub, err := solana.PublicKeyFromBase58(row.ChainAddr)
		if err != nil {
			return Account{}, fmt.Errorf("store: malformed SVM address %q for %s: %w", row.ChainAddr, row.ILPAddress, err)
		}
		a.SVMAddress = pub
	default:
		return Account{}, fmt.Errorf("store: unknown account kind %q for %s", row.Kind, row.ILPAddress)
	}
	return a, nil
}

// Put inserts or replaces the account keyed by its ILP address.
func (s *Store) Put(ctx context.Context, a Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := toRow(a)
	_, err := s.db.Insert(accountsTable, dbx.Params{
		"ilp_address": row.ILPAddress,
		"kind":        row.Kind,
		"chain_addr":  row.ChainAddr,
		"asset_code":  row.AssetCode,
		"asset_scale": row.AssetScale,
	}).Execute()
	if err == nil {
		return nil
	}

	// ilp_address already exists; fall back to an update.
	_, err = s.db.Update(accountsTable, dbx.Params{
		"kind":        row.Kind,
		"chain_addr":  row.ChainAddr,
		"asset_code":  row.AssetCode,
		"asset_scale": row.AssetScale,
	}, dbx.HashExp{"ilp_address": row.ILPAddress}).Execute()
	if err != nil {
		return fmt.Errorf("store: saving account %s: %w", a.ILPAddress, err)
	}
	return nil
}

// Get looks up the account registered under ilpAddress.
func (s *Store) Get(ctx context.Context, ilpAddress string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	var row accountRow
	err := s.db.Select().From(accountsTable).
		Where(dbx.HashExp{"ilp_address": ilpAddress}).
		One(&row)
	if err == sql.ErrNoRows {
		return Account{}, fmt.Errorf("store: no account registered for %q", ilpAddress)
	}
	if err != nil {
		return Account{}, fmt.Errorf("store: looking up %s: %w", ilpAddress, err)
	}
	return fromRow(row)
}

// List returns every registered account, ordered by ILP address.
func (s *Store) List(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []accountRow
	if err := s.db.Select().From(accountsTable).OrderBy("ilp_address").All(&rows); err != nil {
		return nil, fmt.Errorf("store: listing accounts: %w", err)
	}
	accounts := make([]Account, 0, len(rows))
	for _, row := range rows {
		a, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// Delete removes the account registered under ilpAddress, if any.
func (s *Store) Delete(ctx context.Context, ilpAddress string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.db.Delete(accountsTable, dbx.HashExp{"ilp_address": ilpAddress}).Execute()
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", ilpAddress, err)
	}
	return nil
}
