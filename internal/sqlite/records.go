package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// timeFormat is the timestamp encoding used in all tables.
const timeFormat = time.RFC3339Nano

// GetRecord retrieves a record by ID from the named collection.
func (b *Backend) GetRecord(collection, id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	switch collection {
	case types.CollectionItems:
		return b.getItem(id)
	case types.CollectionTags:
		return b.getTag(id)
	case types.CollectionItemTags:
		return b.getItemTag(id)
	case types.CollectionAttachments:
		return b.getAttachment(id)
	case types.CollectionVersions:
		return b.getVersion(id)
	default:
		return nil, types.ErrCollectionUnknown
	}
}

// PutRecord creates or updates a record. If id is empty a UUID v7 is
// generated. The record is validated before touching the database.
func (b *Backend) PutRecord(collection, id string, record any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return "", err
	}

	switch collection {
	case types.CollectionItems:
		return b.putItem(id, record)
	case types.CollectionTags:
		return b.putTag(id, record)
	case types.CollectionItemTags:
		return b.putItemTag(id, record)
	case types.CollectionAttachments:
		return b.putAttachment(id, record)
	case types.CollectionVersions:
		return b.putVersion(id, record)
	default:
		return "", types.ErrCollectionUnknown
	}
}

// DeleteRecord removes a record. Items support soft deletion (hard=false);
// the other collections have no soft state and are always purged. Hard
// deletion of an item cascades to its tag assignments, attachments, and
// versions.
func (b *Backend) DeleteRecord(collection, id string, hard bool) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if collection == types.CollectionItems {
		return b.deleteItem(id, hard)
	}

	table, ok := map[string]string{
		types.CollectionTags:        "tags",
		types.CollectionItemTags:    "item_tags",
		types.CollectionAttachments: "attachments",
		types.CollectionVersions:    "versions",
	}[collection]
	if !ok {
		return types.ErrCollectionUnknown
	}

	res, err := b.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete from %s: %w", table, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ListRecords returns records matching the filter. Result order is not part
// of the contract; callers impose order with their own comparator.
func (b *Backend) ListRecords(collection string, filter map[string]any) ([]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	switch collection {
	case types.CollectionItems:
		return b.listItems(filter)
	case types.CollectionTags:
		return b.listTags(filter)
	case types.CollectionItemTags:
		return b.listItemTags(filter)
	case types.CollectionAttachments:
		return b.listAttachments(filter)
	case types.CollectionVersions:
		return b.listVersions(filter)
	default:
		return nil, types.ErrCollectionUnknown
	}
}

// Item CRUD.

// itemColumns returns the select list for items. In degraded mode the
// sort_order column does not exist and items keep SortOrder zero, which
// leaves them in insertion order.
func (b *Backend) itemColumns() string {
	cols := "id, parent_id, type, title, content, content_plain, created_at, updated_at, deleted_at"
	if b.sortOrdered {
		cols += ", sort_order"
	}
	return cols
}

type scanner interface {
	Scan(dest ...any) error
}

func (b *Backend) scanItem(row scanner) (*types.Item, error) {
	var it types.Item
	var parentID, deletedAt sql.NullString
	var createdAt, updatedAt string

	dest := []any{&it.ID, &parentID, &it.Type, &it.Title, &it.Content,
		&it.ContentPlain, &createdAt, &updatedAt, &deletedAt}
	if b.sortOrdered {
		dest = append(dest, &it.SortOrder)
	}

	err := row.Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if parentID.Valid {
		it.ParentID = &parentID.String
	}
	it.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing item created_at: %w", err)
	}
	it.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing item updated_at: %w", err)
	}
	if deletedAt.Valid {
		dt, err := time.Parse(timeFormat, deletedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing item deleted_at: %w", err)
		}
		it.DeletedAt = &dt
	}
	return &it, nil
}

func (b *Backend) getItem(id string) (any, error) {
	row := b.db.QueryRow(
		"SELECT "+b.itemColumns()+" FROM items WHERE id = ?", id)
	return b.scanItem(row)
}

func (b *Backend) putItem(id string, record any) (string, error) {
	it, ok := record.(*types.Item)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := it.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	isCreate := id == "" && it.ID == ""
	if isCreate {
		it.ID = newUUID()
		it.CreatedAt = now
	} else if id != "" {
		it.ID = id
	}
	it.UpdatedAt = now

	var parentID sql.NullString
	if it.ParentID != nil {
		parentID = sql.NullString{String: *it.ParentID, Valid: true}
	}
	var deletedAt sql.NullString
	if it.DeletedAt != nil {
		deletedAt = sql.NullString{String: it.DeletedAt.Format(timeFormat), Valid: true}
	}

	if b.sortOrdered {
		_, err := b.db.Exec(`
			INSERT INTO items (id, parent_id, type, title, content, content_plain, created_at, updated_at, deleted_at, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				parent_id = excluded.parent_id,
				type = excluded.type,
				title = excluded.title,
				content = excluded.content,
				content_plain = excluded.content_plain,
				updated_at = excluded.updated_at,
				deleted_at = excluded.deleted_at,
				sort_order = excluded.sort_order`,
			it.ID, parentID, it.Type, it.Title, it.Content, it.ContentPlain,
			it.CreatedAt.Format(timeFormat), it.UpdatedAt.Format(timeFormat),
			deletedAt, it.SortOrder)
		if err != nil {
			return "", fmt.Errorf("upserting item: %w", err)
		}
		return it.ID, nil
	}

	_, err := b.db.Exec(`
		INSERT INTO items (id, parent_id, type, title, content, content_plain, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			type = excluded.type,
			title = excluded.title,
			content = excluded.content,
			content_plain = excluded.content_plain,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		it.ID, parentID, it.Type, it.Title, it.Content, it.ContentPlain,
		it.CreatedAt.Format(timeFormat), it.UpdatedAt.Format(timeFormat),
		deletedAt)
	if err != nil {
		return "", fmt.Errorf("upserting item: %w", err)
	}
	return it.ID, nil
}

func (b *Backend) deleteItem(id string, hard bool) error {
	var exists int
	if err := b.db.QueryRow(
		"SELECT 1 FROM items WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
		return types.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("checking item: %w", err)
	}

	if !hard {
		now := time.Now().UTC().Format(timeFormat)
		_, err := b.db.Exec(
			"UPDATE items SET deleted_at = ?, updated_at = ? WHERE id = ?",
			now, now, id)
		if err != nil {
			return fmt.Errorf("soft-deleting item: %w", err)
		}
		return nil
	}

	// Dependent tag assignments, attachments, and versions cascade via the
	// schema's foreign keys.
	if _, err := b.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func (b *Backend) listItems(filter map[string]any) ([]any, error) {
	query := "SELECT " + b.itemColumns() + " FROM items"
	var conditions []string
	var args []any

	includeDeleted := false
	if v, ok := filter["include_deleted"]; ok {
		flag, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		includeDeleted = flag
	}
	if !includeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	if v, ok := filter["parent_id"]; ok {
		pid, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if pid == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = ?")
			args = append(args, pid)
		}
	}

	if v, ok := filter["type"]; ok {
		typ, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "type = ?")
		args = append(args, typ)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		it, err := b.scanItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, it)
	}
	if results == nil {
		results = []any{}
	}
	return results, rows.Err()
}

// Tag CRUD.

func (b *Backend) getTag(id string) (any, error) {
	var tg types.Tag
	var createdAt string
	err := b.db.QueryRow(
		"SELECT id, name, color, created_at FROM tags WHERE id = ?", id).
		Scan(&tg.ID, &tg.Name, &tg.Color, &createdAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning tag: %w", err)
	}
	tg.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing tag created_at: %w", err)
	}
	return &tg, nil
}

func (b *Backend) putTag(id string, record any) (string, error) {
	tg, ok := record.(*types.Tag)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := tg.Validate(); err != nil {
		return "", err
	}

	isCreate := id == "" && tg.ID == ""
	if isCreate {
		tg.ID = newUUID()
		tg.CreatedAt = time.Now().UTC()
	} else if id != "" {
		tg.ID = id
	}

	_, err := b.db.Exec(`
		INSERT INTO tags (id, name, color, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color`,
		tg.ID, tg.Name, tg.Color, tg.CreatedAt.Format(timeFormat))
	if err != nil {
		return "", fmt.Errorf("upserting tag: %w", err)
	}
	return tg.ID, nil
}

func (b *Backend) listTags(filter map[string]any) ([]any, error) {
	query := "SELECT id, name, color, created_at FROM tags"
	var args []any
	if v, ok := filter["name"]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY name"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		var tg types.Tag
		var createdAt string
		if err := rows.Scan(&tg.ID, &tg.Name, &tg.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tg.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		results = append(results, &tg)
	}
	if results == nil {
		results = []any{}
	}
	return results, rows.Err()
}

// Tag assignment CRUD.

func (b *Backend) getItemTag(id string) (any, error) {
	var a types.TagAssignment
	var createdAt string
	err := b.db.QueryRow(
		"SELECT id, item_id, tag_id, created_at FROM item_tags WHERE id = ?", id).
		Scan(&a.ID, &a.ItemID, &a.TagID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning tag assignment: %w", err)
	}
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &a, nil
}

func (b *Backend) putItemTag(id string, record any) (string, error) {
	a, ok := record.(*types.TagAssignment)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := a.Validate(); err != nil {
		return "", err
	}

	isCreate := id == "" && a.ID == ""
	if isCreate {
		a.ID = newUUID()
		a.CreatedAt = time.Now().UTC()
	} else if id != "" {
		a.ID = id
	}

	_, err := b.db.Exec(`
		INSERT INTO item_tags (id, item_id, tag_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			tag_id = excluded.tag_id`,
		a.ID, a.ItemID, a.TagID, a.CreatedAt.Format(timeFormat))
	if err != nil {
		return "", fmt.Errorf("upserting tag assignment: %w", err)
	}
	return a.ID, nil
}

func (b *Backend) listItemTags(filter map[string]any) ([]any, error) {
	query := "SELECT id, item_id, tag_id, created_at FROM item_tags"
	var conditions []string
	var args []any

	for _, col := range []string{"item_id", "tag_id"} {
		if v, ok := filter[col]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, types.ErrInvalidFilter
			}
			conditions = append(conditions, col+" = ?")
			args = append(args, s)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tag assignments: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		var a types.TagAssignment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ItemID, &a.TagID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning tag assignment: %w", err)
		}
		a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		results = append(results, &a)
	}
	if results == nil {
		results = []any{}
	}
	return results, rows.Err()
}

// Attachment CRUD.

func (b *Backend) getAttachment(id string) (any, error) {
	var a types.Attachment
	var createdAt string
	err := b.db.QueryRow(
		"SELECT id, item_id, name, media_type, path, size, created_at FROM attachments WHERE id = ?", id).
		Scan(&a.ID, &a.ItemID, &a.Name, &a.MediaType, &a.Path, &a.Size, &createdAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &a, nil
}

func (b *Backend) putAttachment(id string, record any) (string, error) {
	a, ok := record.(*types.Attachment)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := a.Validate(); err != nil {
		return "", err
	}

	isCreate := id == "" && a.ID == ""
	if isCreate {
		a.ID = newUUID()
		a.CreatedAt = time.Now().UTC()
	} else if id != "" {
		a.ID = id
	}

	_, err := b.db.Exec(`
		INSERT INTO attachments (id, item_id, name, media_type, path, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			name = excluded.name,
			media_type = excluded.media_type,
			path = excluded.path,
			size = excluded.size`,
		a.ID, a.ItemID, a.Name, a.MediaType, a.Path, a.Size,
		a.CreatedAt.Format(timeFormat))
	if err != nil {
		return "", fmt.Errorf("upserting attachment: %w", err)
	}
	return a.ID, nil
}

func (b *Backend) listAttachments(filter map[string]any) ([]any, error) {
	query := "SELECT id, item_id, name, media_type, path, size, created_at FROM attachments"
	var args []any
	if v, ok := filter["item_id"]; ok {
		itemID, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE item_id = ?"
		args = append(args, itemID)
	}
	query += " ORDER BY created_at, id"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		var a types.Attachment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Name, &a.MediaType, &a.Path, &a.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		results = append(results, &a)
	}
	if results == nil {
		results = []any{}
	}
	return results, rows.Err()
}

// Version CRUD.

func (b *Backend) getVersion(id string) (any, error) {
	var v types.Version
	var createdAt string
	err := b.db.QueryRow(
		"SELECT id, item_id, title, content, created_at FROM versions WHERE id = ?", id).
		Scan(&v.ID, &v.ItemID, &v.Title, &v.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	v.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &v, nil
}

func (b *Backend) putVersion(id string, record any) (string, error) {
	v, ok := record.(*types.Version)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := v.Validate(); err != nil {
		return "", err
	}

	isCreate := id == "" && v.ID == ""
	if isCreate {
		v.ID = newUUID()
		v.CreatedAt = time.Now().UTC()
	} else if id != "" {
		v.ID = id
	}

	_, err := b.db.Exec(`
		INSERT INTO versions (id, item_id, title, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			title = excluded.title,
			content = excluded.content`,
		v.ID, v.ItemID, v.Title, v.Content, v.CreatedAt.Format(timeFormat))
	if err != nil {
		return "", fmt.Errorf("upserting version: %w", err)
	}
	return v.ID, nil
}

func (b *Backend) listVersions(filter map[string]any) ([]any, error) {
	query := "SELECT id, item_id, title, content, created_at FROM versions"
	var args []any
	if v, ok := filter["item_id"]; ok {
		itemID, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE item_id = ?"
		args = append(args, itemID)
	}
	query += " ORDER BY created_at, id"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		var ver types.Version
		var createdAt string
		if err := rows.Scan(&ver.ID, &ver.ItemID, &ver.Title, &ver.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		ver.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		results = append(results, &ver)
	}
	if results == nil {
		results = []any{}
	}
	return results, rows.Err()
}
