package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/stashport/internal/domain"
)

// ItineraryRepo defines the persistence operations for itinerary rows and the
// assembled itinerary read model.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ItineraryRepo interface {
	// Insert writes a new itinerary row using the caller-generated ID and slug.
	// Returns domain.ErrConflict if the slug is already taken.
	Insert(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// Update overwrites the mutable columns (everything except id, user_id,
	// slug and created_at) and bumps updated_at. An empty Type keeps the
	// stored type.
	// Returns domain.ErrNotFound if no itinerary with that ID exists.
	Update(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// Delete removes an itinerary; days, activities, categories, items and
	// tags go with it through ON DELETE CASCADE.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// OwnerOf returns the user_id of an itinerary.
	// Returns domain.ErrNotFound if it does not exist.
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// GetByID returns the itinerary with days, activities, categories, items
	// and tags, all in one round trip.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error)

	// GetBySlug is GetByID keyed by slug.
	GetBySlug(ctx context.Context, slug string) (domain.Itinerary, error)

	// ListByOwner returns every itinerary of a user, assembled, newest first.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error)

	// Explore returns one page of public itinerary summaries matching q and
	// the total number of matching rows.
	Explore(ctx context.Context, q domain.ExploreQuery) ([]domain.Summary, int64, error)
}

// pgItineraryRepo is the Postgres implementation of ItineraryRepo.
type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

// itineraryColumns is the bare row. Unqualified so it can serve both RETURNING
// clauses and SELECTs over "itineraries i".
const itineraryColumns = `
	id, user_id, title, description, destination, slug, is_public,
	budget_level, type, cover_photo_url, stashed_from_id, created_at, updated_at`

// aggregateColumns adds the children as JSON and the tags as a text array, so
// an assembled itinerary is a single row. Days and activities keep their
// input order through the position column.
const aggregateColumns = itineraryColumns + `,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', d.id,
			'day_number', d.day_number,
			'date', d.date,
			'title', d.title,
			'activities', COALESCE((
				SELECT json_agg(json_build_object(
					'id', a.id,
					'title', a.title,
					'location', a.location,
					'start_time', a.start_time,
					'end_time', a.end_time,
					'notes', a.notes
				) ORDER BY a.position)
				FROM activities a
				WHERE a.day_id = d.id
			), '[]'::json)
		) ORDER BY d.position)
		FROM days d
		WHERE d.itinerary_id = i.id
	), '[]'::json) AS days,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', c.id,
			'name', c.name,
			'icon', c.icon,
			'sort_order', c.sort_order,
			'items', COALESCE((
				SELECT json_agg(json_build_object(
					'id', ci.id,
					'title', ci.title,
					'location', ci.location,
					'notes', ci.notes,
					'sort_order', ci.sort_order
				) ORDER BY ci.sort_order, ci.created_at)
				FROM category_items ci
				WHERE ci.category_id = c.id
			), '[]'::json)
		) ORDER BY c.sort_order, c.created_at)
		FROM categories c
		WHERE c.itinerary_id = i.id
	), '[]'::json) AS categories,
	ARRAY(
		SELECT t.tag FROM trip_tags t
		WHERE t.itinerary_id = i.id
		ORDER BY t.created_at, t.tag
	) AS tags`

const (
	foreignKeyViolation = "23503"
	stashedFromFK       = "itineraries_stashed_from_id_fkey"
)

// Insert writes the itinerary row. ON CONFLICT (slug) DO NOTHING leaves the
// surrounding transaction usable, so the service can retry with another slug.
func (r *pgItineraryRepo) Insert(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	const q = `
		INSERT INTO itineraries (
			id, user_id, title, description, destination, slug, is_public,
			budget_level, type, cover_photo_url, stashed_from_id)
		VALUES (
			@id, @user_id, @title, @description, @destination, @slug, @is_public,
			@budget_level, @type, @cover_photo_url, @stashed_from_id)
		ON CONFLICT (slug) DO NOTHING
		RETURNING ` + itineraryColumns

	args := rowArgs(it)
	args["id"] = it.ID
	args["user_id"] = it.UserID
	args["slug"] = it.Slug
	args["stashed_from_id"] = it.StashedFromID

	result, err := scanItinerary(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Insert: slug %q: %w", it.Slug, domain.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == stashedFromFK {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Insert: %w",
			domain.NewValidationError("stashedFromId does not reference an existing itinerary"))
	}
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Insert: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable columns of an itinerary. An empty Type keeps
// the stored type; the slug never changes.
func (r *pgItineraryRepo) Update(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	const q = `
		UPDATE itineraries
		SET title           = @title,
		    description     = @description,
		    destination     = @destination,
		    is_public       = @is_public,
		    budget_level    = @budget_level,
		    type            = COALESCE(NULLIF(@type::text, ''), type),
		    cover_photo_url = @cover_photo_url,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + itineraryColumns

	args := rowArgs(it)
	args["id"] = it.ID

	result, err := scanItinerary(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes an itinerary by primary key.
func (r *pgItineraryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM itineraries WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// OwnerOf looks up only the owner column.
func (r *pgItineraryRepo) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT user_id FROM itineraries WHERE id = @id`

	var owner pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("repo.ItineraryRepo.OwnerOf: %w", domain.ErrNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("repo.ItineraryRepo.OwnerOf: %w", err)
	}
	return uuid.UUID(owner.Bytes), nil
}

// GetByID retrieves an assembled itinerary by primary key.
func (r *pgItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Itinerary, error) {
	const q = `SELECT ` + aggregateColumns + ` FROM itineraries i WHERE i.id = @id`

	result, err := scanAggregate(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves an assembled itinerary by slug.
func (r *pgItineraryRepo) GetBySlug(ctx context.Context, slug string) (domain.Itinerary, error) {
	const q = `SELECT ` + aggregateColumns + ` FROM itineraries i WHERE i.slug = @slug`

	result, err := scanAggregate(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// ListByOwner returns a user's itineraries, newest first.
func (r *pgItineraryRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Itinerary, error) {
	const q = `SELECT ` + aggregateColumns + `
		FROM itineraries i
		WHERE i.user_id = @user_id
		ORDER BY i.created_at DESC, i.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	itineraries := []domain.Itinerary{}
	for rows.Next() {
		it, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItineraryRepo.ListByOwner: scan: %w", err)
		}
		itineraries = append(itineraries, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByOwner: rows: %w", err)
	}
	return itineraries, nil
}

// exploreFilter is shared by the page and count queries. The tag filter is a
// semi-join so LIMIT/OFFSET apply to already-filtered rows.
const exploreFilter = `
	WHERE i.is_public
	  AND (@exclude_user::uuid IS NULL OR i.user_id <> @exclude_user::uuid)
	  AND (@destination::text = '' OR i.destination ILIKE '%' || @destination::text || '%')
	  AND (@type::text = '' OR i.type = @type::text)
	  AND (cardinality(@tags::text[]) = 0 OR EXISTS (
		SELECT 1 FROM trip_tags ft
		WHERE ft.itinerary_id = i.id AND lower(ft.tag) = ANY(@tags::text[])
	  ))`

// Explore returns one page of public summaries and the total match count.
// Owner display info, day count and tags come from the same query.
func (r *pgItineraryRepo) Explore(ctx context.Context, q domain.ExploreQuery) ([]domain.Summary, int64, error) {
	const pageQ = `
		SELECT i.id, i.title, i.description, i.destination, i.slug, i.type,
		       i.budget_level, i.cover_photo_url, i.created_at,
		       p.id, p.display_name, p.avatar_color,
		       (SELECT count(*) FROM days d WHERE d.itinerary_id = i.id),
		       (SELECT count(*) FROM categories c WHERE c.itinerary_id = i.id),
		       ARRAY(SELECT t.tag FROM trip_tags t WHERE t.itinerary_id = i.id ORDER BY t.tag)
		FROM itineraries i
		JOIN user_profiles p ON p.id = i.user_id` + exploreFilter + `
		ORDER BY i.created_at DESC, i.id
		LIMIT @limit OFFSET @offset`

	const countQ = `SELECT count(*) FROM itineraries i` + exploreFilter

	tags := q.Tags
	if tags == nil {
		// nil would encode as NULL and make cardinality() NULL.
		tags = []string{}
	}
	args := pgx.NamedArgs{
		"exclude_user": q.ExcludeUser,
		"destination":  escapeLike(q.Destination),
		"type":         string(q.Type),
		"tags":         tags,
		"limit":        q.Limit,
		"offset":       q.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.Explore: count: %w", err)
	}

	rows, err := r.db.Query(ctx, pageQ, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.Explore: %w", err)
	}
	defer rows.Close()

	summaries := []domain.Summary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ItineraryRepo.Explore: scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.Explore: rows: %w", err)
	}
	return summaries, total, nil
}

// rowArgs holds the column values shared by Insert and Update.
func rowArgs(it domain.Itinerary) pgx.NamedArgs {
	return pgx.NamedArgs{
		"title":           it.Title,
		"description":     nullIfEmpty(it.Description),
		"destination":     nullIfEmpty(it.Destination),
		"is_public":       it.IsPublic,
		"budget_level":    it.BudgetLevel, // nil becomes NULL
		"type":            string(it.Type),
		"cover_photo_url": nullIfEmpty(it.CoverPhotoURL),
	}
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// itineraryRow holds the scan targets of itineraryColumns.
type itineraryRow struct {
	id, userID, stashedFrom  pgtype.UUID
	description, dest, cover *string
	typ                      string
	it                       domain.Itinerary
}

func (row *itineraryRow) targets() []any {
	return []any{
		&row.id, &row.userID, &row.it.Title, &row.description, &row.dest, &row.it.Slug,
		&row.it.IsPublic, &row.it.BudgetLevel, &row.typ, &row.cover, &row.stashedFrom,
		&row.it.CreatedAt, &row.it.UpdatedAt,
	}
}

func (row *itineraryRow) itinerary() domain.Itinerary {
	it := row.it
	it.ID = uuid.UUID(row.id.Bytes)
	it.UserID = uuid.UUID(row.userID.Bytes)
	it.Description = derefString(row.description)
	it.Destination = derefString(row.dest)
	it.CoverPhotoURL = derefString(row.cover)
	it.Type = domain.ItineraryType(row.typ)
	if row.stashedFrom.Valid {
		id := uuid.UUID(row.stashedFrom.Bytes)
		it.StashedFromID = &id
	}
	return it
}

// scanItinerary maps a bare itinerary row.
func scanItinerary(s scanner) (domain.Itinerary, error) {
	var row itineraryRow
	if err := s.Scan(row.targets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Itinerary{}, domain.ErrNotFound
		}
		return domain.Itinerary{}, err
	}
	return row.itinerary(), nil
}

// JSON shapes produced by aggregateColumns.
type (
	dayJSON struct {
		ID         uuid.UUID      `json:"id"`
		DayNumber  int            `json:"day_number"`
		Date       *string        `json:"date"`
		Title      *string        `json:"title"`
		Activities []activityJSON `json:"activities"`
	}
	activityJSON struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Location  *string   `json:"location"`
		StartTime *string   `json:"start_time"`
		EndTime   *string   `json:"end_time"`
		Notes     *string   `json:"notes"`
	}
	categoryJSON struct {
		ID        uuid.UUID  `json:"id"`
		Name      string     `json:"name"`
		Icon      string     `json:"icon"`
		SortOrder int        `json:"sort_order"`
		Items     []itemJSON `json:"items"`
	}
	itemJSON struct {
		ID        uuid.UUID `json:"id"`
		Title     string    `json:"title"`
		Location  *string   `json:"location"`
		Notes     *string   `json:"notes"`
		SortOrder int       `json:"sort_order"`
	}
)

// scanAggregate maps a row of aggregateColumns into a fully assembled itinerary.
func scanAggregate(s scanner) (domain.Itinerary, error) {
	var (
		row                  itineraryRow
		daysRaw, categoryRaw []byte
		tags                 []string
	)
	targets := append(row.targets(), &daysRaw, &categoryRaw, &tags)
	if err := s.Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Itinerary{}, domain.ErrNotFound
		}
		return domain.Itinerary{}, err
	}
	it := row.itinerary()

	var days []dayJSON
	if err := json.Unmarshal(daysRaw, &days); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode days: %w", err)
	}
	it.Days = make([]domain.Day, 0, len(days))
	for _, d := range days {
		day := domain.Day{
			ID:          d.ID,
			ItineraryID: it.ID,
			DayNumber:   d.DayNumber,
			Title:       derefString(d.Title),
			Activities:  make([]domain.Activity, 0, len(d.Activities)),
		}
		if d.Date != nil {
			date, err := time.Parse(time.DateOnly, *d.Date)
			if err != nil {
				return domain.Itinerary{}, fmt.Errorf("decode day date: %w", err)
			}
			day.Date = &date
		}
		for _, a := range d.Activities {
			day.Activities = append(day.Activities, domain.Activity{
				ID:        a.ID,
				DayID:     d.ID,
				Title:     a.Title,
				Location:  derefString(a.Location),
				StartTime: derefString(a.StartTime),
				EndTime:   derefString(a.EndTime),
				Notes:     derefString(a.Notes),
			})
		}
		it.Days = append(it.Days, day)
	}

	var categories []categoryJSON
	if err := json.Unmarshal(categoryRaw, &categories); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode categories: %w", err)
	}
	it.Categories = make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		cat := domain.Category{
			ID:          c.ID,
			ItineraryID: it.ID,
			Name:        c.Name,
			Icon:        c.Icon,
			SortOrder:   c.SortOrder,
			Items:       make([]domain.CategoryItem, 0, len(c.Items)),
		}
		for _, item := range c.Items {
			cat.Items = append(cat.Items, domain.CategoryItem{
				ID:         item.ID,
				CategoryID: c.ID,
				Title:      item.Title,
				Location:   derefString(item.Location),
				Notes:      derefString(item.Notes),
				SortOrder:  item.SortOrder,
			})
		}
		it.Categories = append(it.Categories, cat)
	}

	if tags == nil {
		tags = []string{}
	}
	it.Tags = tags
	return it, nil
}

// scanSummary maps one explore row.
func scanSummary(s scanner) (domain.Summary, error) {
	var (
		sum                      domain.Summary
		id, ownerID              pgtype.UUID
		description, dest, cover *string
		typ                      string
		dayCount, categoryCount  int64
	)
	err := s.Scan(
		&id, &sum.Title, &description, &dest, &sum.Slug, &typ,
		&sum.BudgetLevel, &cover, &sum.CreatedAt,
		&ownerID, &sum.OwnerDisplayName, &sum.OwnerAvatarColor,
		&dayCount, &categoryCount, &sum.Tags,
	)
	if err != nil {
		return domain.Summary{}, err
	}
	sum.ID = uuid.UUID(id.Bytes)
	sum.OwnerID = uuid.UUID(ownerID.Bytes)
	sum.Description = derefString(description)
	sum.Destination = derefString(dest)
	sum.CoverPhotoURL = derefString(cover)
	sum.Type = domain.ItineraryType(typ)
	sum.DayCount = int(dayCount)
	sum.CategoryCount = int(categoryCount)
	if sum.Tags == nil {
		sum.Tags = []string{}
	}
	return sum, nil
}
