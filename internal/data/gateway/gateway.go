package gateway

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/accountsync/internal/domain/accounts"
	"github.com/yungbote/accountsync/internal/platform/dbctx"
	"github.com/yungbote/accountsync/internal/platform/logger"
)

// Querier runs read-only association queries.
// Each call materializes its full result before returning, so calls never interleave.
type Querier interface {
	GetView(query string, params map[string]any) ([]*Row, error)
}

// Gateway is the row-level persistence surface the account aggregate writes through.
type Gateway interface {
	Querier
	// GetRowOrNew returns the row matching the key, inserting it when missing.
	GetRowOrNew(table string, keyColumns []string, keyValues ...any) (*Row, error)
	// NewRow stages a row that is inserted on the next Save.
	NewRow(table string) *Row
	// DeleteRows removes every row matching the key immediately.
	DeleteRows(table string, keyColumns []string, keyValues ...any) error
	// Save flushes staged inserts and updates.
	Save() error
}

var (
	ErrDetachedRow   = errors.New("row was already inserted and cannot be updated")
	ErrInvalidKey    = errors.New("invalid row key")
	identifierRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

type gormGateway struct {
	dbc     dbctx.Context
	db      *gorm.DB
	log     *logger.Logger
	tracked []*Row
}

// New binds a gateway to dbc; dbc.Tx wins over db when set.
// A gateway is not safe for concurrent use: one gateway serves one aggregate.
func New(dbc dbctx.Context, db *gorm.DB, baseLog *logger.Logger) Gateway {
	return &gormGateway{dbc: dbc, db: db, log: baseLog.With("component", "RowGateway")}
}

func (g *gormGateway) conn() (*gorm.DB, error) {
	conn := g.dbc.DB(g.db)
	if conn == nil {
		return nil, fmt.Errorf("gateway has no database")
	}
	return conn, nil
}

func keyMap(table string, keyColumns []string, keyValues []any) (map[string]any, error) {
	if !identifierRegexp.MatchString(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidKey, table)
	}
	if len(keyColumns) == 0 || len(keyColumns) != len(keyValues) {
		return nil, fmt.Errorf("%w: %d columns for %d values on %s", ErrInvalidKey, len(keyColumns), len(keyValues), table)
	}
	where := make(map[string]any, len(keyColumns))
	for i, col := range keyColumns {
		col = strings.ToLower(strings.TrimSpace(col))
		if !identifierRegexp.MatchString(col) {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidKey, col)
		}
		where[col] = normalize(keyValues[i])
	}
	return where, nil
}

func (g *gormGateway) findOne(conn *gorm.DB, table string, where map[string]any) (map[string]any, error) {
	var found []map[string]any
	if err := conn.Table(table).
		Where(where).
		Order(accounts.PrimaryKey(table)).
		Limit(1).
		Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (g *gormGateway) GetRowOrNew(table string, keyColumns []string, keyValues ...any) (*Row, error) {
	where, err := keyMap(table, keyColumns, keyValues)
	if err != nil {
		return nil, err
	}
	conn, err := g.conn()
	if err != nil {
		return nil, err
	}
	values, err := g.findOne(conn, table, where)
	if err != nil {
		return nil, err
	}
	if values == nil {
		insert := make(map[string]any, len(where))
		for k, v := range where {
			insert[k] = v
		}
		if err := conn.Table(table).Create(insert).Error; err != nil {
			return nil, err
		}
		if values, err = g.findOne(conn, table, where); err != nil {
			return nil, err
		}
		if values == nil {
			return nil, fmt.Errorf("row vanished after insert into %s", table)
		}
		g.log.Debug("Row inserted", "table", table)
	}
	row := NewRowFromValues(table, values)
	g.tracked = append(g.tracked, row)
	return row, nil
}

func (g *gormGateway) NewRow(table string) *Row {
	row := &Row{table: table, values: map[string]any{}, dirty: map[string]struct{}{}, state: rowNew}
	g.tracked = append(g.tracked, row)
	return row
}

func (g *gormGateway) DeleteRows(table string, keyColumns []string, keyValues ...any) error {
	where, err := keyMap(table, keyColumns, keyValues)
	if err != nil {
		return err
	}
	conn, err := g.conn()
	if err != nil {
		return err
	}
	clauses := make([]string, 0, len(keyColumns))
	args := make([]any, 0, len(keyColumns))
	for _, col := range keyColumns {
		col = strings.ToLower(strings.TrimSpace(col))
		clauses = append(clauses, col+" = ?")
		args = append(args, where[col])
	}
	return conn.Exec("DELETE FROM "+table+" WHERE "+strings.Join(clauses, " AND "), args...).Error
}

func (g *gormGateway) GetView(query string, params map[string]any) ([]*Row, error) {
	conn, err := g.conn()
	if err != nil {
		return nil, err
	}
	var results []map[string]any
	q := conn.Raw(query)
	if len(params) > 0 {
		q = conn.Raw(query, params)
	}
	if err := q.Scan(&results).Error; err != nil {
		return nil, err
	}
	out := make([]*Row, 0, len(results))
	for _, values := range results {
		out = append(out, NewRowFromValues("", values))
	}
	return out, nil
}

func (g *gormGateway) Save() error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	for _, row := range g.tracked {
		switch row.state {
		case rowNew:
			if len(row.values) > 0 {
				insert := make(map[string]any, len(row.values))
				for k, v := range row.values {
					insert[k] = v
				}
				if err := conn.Table(row.table).Create(insert).Error; err != nil {
					return fmt.Errorf("insert into %s: %w", row.table, err)
				}
			}
			row.state = rowInserted
			row.clearDirty()
		case rowInserted:
			if len(row.dirty) > 0 {
				return fmt.Errorf("%s: %w", row.table, ErrDetachedRow)
			}
		default:
			if len(row.dirty) == 0 {
				continue
			}
			id, err := row.ID()
			if err != nil {
				return err
			}
			if err := conn.Table(row.table).
				Where(accounts.PrimaryKey(row.table)+" = ?", id).
				Updates(row.dirtyValues()).Error; err != nil {
				return fmt.Errorf("update %s: %w", row.table, err)
			}
			row.clearDirty()
		}
	}
	return nil
}
