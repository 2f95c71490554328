package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

type sessionRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

func (sessionRow) TableName() string { return "bingo_sessions" }

type cardRow struct {
	ID        string         `gorm:"primaryKey;size:36"`
	SessionID string         `gorm:"index;size:36;not null"`
	Name      string         `gorm:"not null"`
	Numbers   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"index"`
}

func (cardRow) TableName() string { return "bingo_cards" }

type drawnRow struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID string    `gorm:"uniqueIndex:idx_drawn_session_value;size:36;not null"`
	Value     int       `gorm:"uniqueIndex:idx_drawn_session_value;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (drawnRow) TableName() string { return "drawn_numbers" }

type patternRow struct {
	SessionID string `gorm:"primaryKey;size:36"`
	Pattern   string `gorm:"not null"`
	UpdatedAt time.Time
}

func (patternRow) TableName() string { return "session_patterns" }

// Gorm is the SQL-backed Store, on Postgres in production or a SQLite file.
type Gorm struct {
	db  *gorm.DB
	now func() time.Time
}

// gormWriter routes gorm's own log lines (slow queries, errors) into zap.
type gormWriter struct{ log *zap.SugaredLogger }

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

func gormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{log: log.Named("gorm").Sugar()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(dsn string, log *zap.Logger) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return NewGorm(db)
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates the schema. SQLite allows one writer, so the pool keeps a single
// connection.
func OpenSQLite(path string, log *zap.Logger) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return NewGorm(db)
}

// NewGorm wraps an open connection and runs AutoMigrate.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&sessionRow{}, &cardRow{}, &drawnRow{}, &patternRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Gorm{db: db, now: time.Now}, nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (g *Gorm) CreateSession(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrEmptyName
	}
	row := sessionRow{ID: newID(), Name: name, CreatedAt: g.now().UTC()}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Session{}, err
	}
	return Session(row), nil
}

func (g *Gorm) ListSessions(ctx context.Context) ([]Session, error) {
	var rows []sessionRow
	if err := g.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, Session(r))
	}
	return out, nil
}

func (g *Gorm) GetSession(ctx context.Context, id string) (Session, error) {
	var row sessionRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return Session{}, notFound(err)
	}
	return Session(row), nil
}

func (g *Gorm) DeleteSession(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&sessionRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&cardRow{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&drawnRow{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&patternRow{}, "session_id = ?", id).Error
	})
}

func toCardRow(c Card) (cardRow, error) {
	numbers, err := json.Marshal(c.Numbers)
	if err != nil {
		return cardRow{}, err
	}
	return cardRow{
		ID:        c.ID,
		SessionID: c.SessionID,
		Name:      c.Name,
		Numbers:   datatypes.JSON(numbers),
		CreatedAt: c.CreatedAt,
	}, nil
}

func fromCardRow(r cardRow) (Card, error) {
	var numbers engine.Grid
	if err := json.Unmarshal(r.Numbers, &numbers); err != nil {
		return Card{}, fmt.Errorf("card %s: decode numbers: %w", r.ID, err)
	}
	return Card{
		ID:        r.ID,
		SessionID: r.SessionID,
		Name:      r.Name,
		Numbers:   numbers,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (g *Gorm) SaveCard(ctx context.Context, in CardInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", ErrEmptyName
	}
	row, err := toCardRow(Card{
		ID:        newID(),
		SessionID: in.SessionID,
		Name:      name,
		Numbers:   in.Numbers,
		CreatedAt: g.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (g *Gorm) UpdateCard(ctx context.Context, id string, upd CardUpdate) error {
	numbers, err := json.Marshal(upd.Numbers)
	if err != nil {
		return err
	}
	fields := map[string]any{"numbers": datatypes.JSON(numbers)}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return ErrEmptyName
		}
		fields["name"] = name
	}

	res := g.db.WithContext(ctx).Model(&cardRow{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) DeleteCard(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Delete(&cardRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) GetCard(ctx context.Context, id string) (Card, error) {
	var row cardRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return Card{}, notFound(err)
	}
	return fromCardRow(row)
}

func (g *Gorm) ListCards(ctx context.Context, sessionID string) ([]Card, error) {
	var rows []cardRow
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Card, 0, len(rows))
	for _, r := range rows {
		c, err := fromCardRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (g *Gorm) AddDrawn(ctx context.Context, sessionID string, value int) (DrawnNumber, error) {
	if err := checkDrawnValue(value); err != nil {
		return DrawnNumber{}, err
	}
	row := drawnRow{SessionID: sessionID, Value: value, CreatedAt: g.now().UTC()}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&drawnRow{}).
			Where("session_id = ? AND value = ?", sessionID, value).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyDrawn
		}
		return tx.Create(&row).Error
	})
	// a concurrent insert can still slip past the count; the unique index catches it
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrAlreadyDrawn
	}
	if err != nil {
		return DrawnNumber{}, err
	}
	return fromDrawnRow(row), nil
}

func fromDrawnRow(r drawnRow) DrawnNumber {
	return DrawnNumber{SessionID: r.SessionID, Value: r.Value, CreatedAt: r.CreatedAt}
}

func (g *Gorm) ListDrawn(ctx context.Context, sessionID string) ([]DrawnNumber, error) {
	var rows []drawnRow
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]DrawnNumber, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromDrawnRow(r))
	}
	return out, nil
}

func (g *Gorm) RemoveDrawn(ctx context.Context, sessionID string, value int) error {
	res := g.db.WithContext(ctx).Delete(&drawnRow{}, "session_id = ? AND value = ?", sessionID, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) UndoLastDrawn(ctx context.Context, sessionID string) (DrawnNumber, bool, error) {
	var row drawnRow
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).
			Order("created_at DESC, id DESC").
			First(&row).Error; err != nil {
			return err
		}
		return tx.Delete(&drawnRow{}, row.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DrawnNumber{}, false, nil
	}
	if err != nil {
		return DrawnNumber{}, false, err
	}
	return fromDrawnRow(row), true, nil
}

func (g *Gorm) GetPattern(ctx context.Context, sessionID string) (engine.PatternType, error) {
	var row patternRow
	err := g.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultPattern, nil
	}
	if err != nil {
		return "", err
	}
	return engine.ParsePattern(row.Pattern)
}

func (g *Gorm) SetPattern(ctx context.Context, sessionID string, p engine.PatternType) error {
	row := patternRow{SessionID: sessionID, Pattern: string(p), UpdatedAt: g.now().UTC()}
	return g.db.WithContext(ctx).Save(&row).Error
}
