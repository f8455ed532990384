package newsroom

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CategoryStore interface {
	// repository.Repository[*Category] methods, spelled out because the
	// embedded interface's List clashes with the filtered List below
	Raw(ctx context.Context, sql string, args ...any) ([]*Category, error)
	RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]*Category, error)
	Get(ctx context.Context, criteria ...repository.SelectCriteria) (*Category, error)
	GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (*Category, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Category, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*Category, error)
	ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]*Category, int, error)
	Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error)
	CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error)
	Create(ctx context.Context, record *Category, criteria ...repository.InsertCriteria) (*Category, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Category, criteria ...repository.InsertCriteria) (*Category, error)
	CreateMany(ctx context.Context, records []*Category, criteria ...repository.InsertCriteria) ([]*Category, error)
	CreateManyTx(ctx context.Context, tx bun.IDB, records []*Category, criteria ...repository.InsertCriteria) ([]*Category, error)
	GetOrCreate(ctx context.Context, record *Category) (*Category, error)
	GetOrCreateTx(ctx context.Context, tx bun.IDB, record *Category) (*Category, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Category, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Category, error)
	Update(ctx context.Context, record *Category, criteria ...repository.UpdateCriteria) (*Category, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Category, criteria ...repository.UpdateCriteria) (*Category, error)
	UpdateMany(ctx context.Context, records []*Category, criteria ...repository.UpdateCriteria) ([]*Category, error)
	UpdateManyTx(ctx context.Context, tx bun.IDB, records []*Category, criteria ...repository.UpdateCriteria) ([]*Category, error)
	Upsert(ctx context.Context, record *Category, criteria ...repository.UpdateCriteria) (*Category, error)
	UpsertTx(ctx context.Context, tx bun.IDB, record *Category, criteria ...repository.UpdateCriteria) (*Category, error)
	UpsertMany(ctx context.Context, records []*Category, criteria ...repository.UpdateCriteria) ([]*Category, error)
	UpsertManyTx(ctx context.Context, tx bun.IDB, records []*Category, criteria ...repository.UpdateCriteria) ([]*Category, error)
	Delete(ctx context.Context, record *Category) error
	DeleteTx(ctx context.Context, tx bun.IDB, record *Category) error
	DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error
	DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
	DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error
	DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
	ForceDelete(ctx context.Context, record *Category) error
	ForceDeleteTx(ctx context.Context, tx bun.IDB, record *Category) error
	Handlers() repository.ModelHandlers[*Category]
	RegisterScope(name string, scope repository.ScopeDefinition)
	SetScopeDefaults(defaults repository.ScopeDefaults) error
	GetScopeDefaults() repository.ScopeDefaults

	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Remove(ctx context.Context, record *Category) error
}

type categories struct {
	repository.Repository[*Category]
	db *bun.DB
}

var _ CategoryStore = (*categories)(nil)

func NewCategoriesRepository(db *bun.DB) CategoryStore {
	repo := repository.NewRepository[*Category](db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(c *Category) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Category, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &categories{
		Repository: repo,
		db:         db,
	}
}

func (s *categories) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	record := &Category{}

	err := s.db.NewSelect().
		Model(record).
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

func (s *categories) List(ctx context.Context) ([]*Category, error) {
	records := []*Category{}

	err := s.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *categories) Remove(ctx context.Context, record *Category) error {
	_, err := s.db.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx)

	return err
}
