package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SQLStore 以 database/sql 讀取食譜目錄（sqlite3 或 postgres）
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLStore 開啟資料庫並建立 schema
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if driver == DriverSQLite {
		// :memory: 每條連線各自一個資料庫
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return s, nil
}

// NewSQLStore 包裝既有連線，不建立 schema
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// Close 關閉連線
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping 檢查資料庫是否可用
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recipe_ingredients (
			recipe_id TEXT NOT NULL REFERENCES recipes(id),
			position INTEGER NOT NULL,
			ingredient_name TEXT NOT NULL,
			amount DOUBLE PRECISION,
			unit_code TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// placeholder 依 driver 回傳第 n 個參數的佔位符
func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SaveRecipe 寫入一份食譜與其食材列
func (s *SQLStore) SaveRecipe(ctx context.Context, recipe Recipe, rows []IngredientRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	p1, p2, p3, p4, p5 := s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5)

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM recipe_ingredients WHERE recipe_id = %s`, p1), recipe.ID); err != nil {
		return fmt.Errorf("clearing ingredient rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM recipes WHERE id = %s`, p1), recipe.ID); err != nil {
		return fmt.Errorf("clearing recipe: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO recipes (id, title) VALUES (%s, %s)`, p1, p2), recipe.ID, recipe.Title); err != nil {
		return fmt.Errorf("inserting recipe: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO recipe_ingredients (recipe_id, position, ingredient_name, amount, unit_code)
		VALUES (%s, %s, %s, %s, %s)`, p1, p2, p3, p4, p5)
	for i, row := range rows {
		var amount sql.NullFloat64
		if row.Amount != nil {
			amount = sql.NullFloat64{Float64: *row.Amount, Valid: true}
		}
		unit := sql.NullString{String: row.UnitCode, Valid: row.UnitCode != ""}
		if _, err := tx.ExecContext(ctx, insert, recipe.ID, i, row.IngredientName, amount, unit); err != nil {
			return fmt.Errorf("inserting ingredient row: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) Recipes(ctx context.Context) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM recipes ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	return scanRecipes(rows)
}

func (s *SQLStore) IngredientRows(ctx context.Context, recipeIDs []string) ([]IngredientRow, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	if s.driver == DriverPostgres {
		rows, err = s.db.QueryContext(ctx,
			`SELECT recipe_id, ingredient_name, amount, unit_code FROM recipe_ingredients
			WHERE recipe_id = ANY($1) ORDER BY recipe_id, position`, pq.Array(recipeIDs))
	} else {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(recipeIDs)), ",")
		args := make([]interface{}, len(recipeIDs))
		for i, id := range recipeIDs {
			args[i] = id
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT recipe_id, ingredient_name, amount, unit_code FROM recipe_ingredients
			WHERE recipe_id IN (`+marks+`) ORDER BY recipe_id, position`, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("querying ingredient rows: %w", err)
	}
	defer rows.Close()

	var out []IngredientRow
	for rows.Next() {
		var (
			row    IngredientRow
			amount sql.NullFloat64
			unit   sql.NullString
		)
		if err := rows.Scan(&row.RecipeID, &row.IngredientName, &amount, &unit); err != nil {
			return nil, fmt.Errorf("scanning ingredient row: %w", err)
		}
		if amount.Valid {
			row.Amount = Amount(amount.Float64)
		}
		row.UnitCode = unit.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingredient rows: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SearchTitle(ctx context.Context, fragment string) ([]Recipe, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(fragment) + "%"

	query := `SELECT id, title FROM recipes WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\' ORDER BY title, id`
	if s.driver == DriverPostgres {
		query = `SELECT id, title FROM recipes WHERE title ILIKE $1 ESCAPE '\' ORDER BY title, id`
	}

	rows, err := s.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching recipe titles: %w", err)
	}
	return scanRecipes(rows)
}

func scanRecipes(rows *sql.Rows) ([]Recipe, error) {
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.Title); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipes: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
