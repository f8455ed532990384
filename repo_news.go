package newsroom

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewsFilter narrows List calls; zero value lists everything
type NewsFilter struct {
	CategoryID    *uuid.UUID
	AuthorID      *uuid.UUID
	PublishedOnly bool
	Limit         int
	Offset        int
}

type NewsStore interface {
	// repository.Repository[*News] methods, spelled out because the
	// embedded interface's List clashes with the filtered List below
	Raw(ctx context.Context, sql string, args ...any) ([]*News, error)
	RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]*News, error)
	Get(ctx context.Context, criteria ...repository.SelectCriteria) (*News, error)
	GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (*News, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*News, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*News, error)
	ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]*News, int, error)
	Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error)
	CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error)
	Create(ctx context.Context, record *News, criteria ...repository.InsertCriteria) (*News, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *News, criteria ...repository.InsertCriteria) (*News, error)
	CreateMany(ctx context.Context, records []*News, criteria ...repository.InsertCriteria) ([]*News, error)
	CreateManyTx(ctx context.Context, tx bun.IDB, records []*News, criteria ...repository.InsertCriteria) ([]*News, error)
	GetOrCreate(ctx context.Context, record *News) (*News, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *News) (*News, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*News, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*News, error)
	Update(ctx context.Context, record *News, criteria ...repository.UpdateCriteria) (*News, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *News, criteria ...repository.UpdateCriteria) (*News, error)
	UpdateMany(ctx context.Context, records []*News, criteria ...repository.UpdateCriteria) ([]*News, error)
	UpdateManyTx(ctx context.Context, tx bun.IDB, records []*News, criteria ...repository.UpdateCriteria) ([]*News, error)
	Upsert(ctx context.Context, record *News, criteria ...repository.UpdateCriteria) (*News, error)
	UpsertTx(ctx context.Context, tx bun.IDB, record *News, criteria ...repository.UpdateCriteria) (*News, error)
	UpsertMany(ctx context.Context, records []*News, criteria ...repository.UpdateCriteria) ([]*News, error)
	UpsertManyTx(ctx context.Context, tx bun.IDB, records []*News, criteria ...repository.UpdateCriteria) ([]*News, error)
	Delete(ctx context.Context, record *News) error
	DeleteTx(ctx context.Context, tx bun.IDB, record *News) error
	DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error
	DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
	DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error
	DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
	ForceDelete(ctx context.Context, record *News) error
	ForceDeleteTx(ctx context.Context, tx bun.IDB, record *News) error
	Handlers() repository.ModelHandlers[*News]
	RegisterScope(name string, scope repository.ScopeDefinition)
	SetScopeDefaults(defaults repository.ScopeDefaults) error
	GetScopeDefaults() repository.ScopeDefaults

	GetBySlug(ctx context.Context, slug string) (*News, error)
	List(ctx context.Context, filter NewsFilter) ([]*News, error)
	Remove(ctx context.Context, record *News) error
}

type newsStore struct {
	repository.Repository[*News]
	db *bun.DB
}

var _ NewsStore = (*newsStore)(nil)

func NewNewsRepository(db *bun.DB) NewsStore {
	repo := repository.NewRepository[*News](db, repository.ModelHandlers[*News]{
		NewRecord: func() *News { return &News{} },
		GetID: func(n *News) uuid.UUID {
			if n == nil {
				return uuid.Nil
			}
			return n.ID
		},
		SetID: func(n *News, id uuid.UUID) {
			if n != nil {
				n.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &newsStore{
		Repository: repo,
		db:         db,
	}
}

func (s *newsStore) GetBySlug(ctx context.Context, slug string) (*News, error) {
	record := &News{}

	err := s.db.NewSelect().
		Model(record).
		Relation("Author").
		Relation("Category").
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"slug": slug})
		}
		return nil, err
	}

	return record, nil
}

func (s *newsStore) List(ctx context.Context, filter NewsFilter) ([]*News, error) {
	records := []*News{}

	q := s.db.NewSelect().
		Model(&records).
		Relation("Author").
		Relation("Category").
		Order("created_at DESC")

	if filter.CategoryID != nil {
		q = q.Where("?TableAlias.category_id = ?", filter.CategoryID.String())
	}
	if filter.AuthorID != nil {
		q = q.Where("?TableAlias.author_id = ?", filter.AuthorID.String())
	}
	if filter.PublishedOnly {
		q = q.Where("?TableAlias.published = TRUE")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *newsStore) Remove(ctx context.Context, record *News) error {
	_, err := s.db.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx)

	return err
}

func prepareNewsDefaults(record *News) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
		record.UpdatedAt = &now
	}
}
