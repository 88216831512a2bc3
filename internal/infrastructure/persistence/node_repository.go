package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nodeResource = "Warehouse node"

// GormNodeRepository implements warehouse.NodeRepository using GORM
type GormNodeRepository struct {
	db  *gorm.DB
	seq *Sequencer
}

// NewGormNodeRepository creates a new GormNodeRepository
func NewGormNodeRepository(db *gorm.DB, seq *Sequencer) *GormNodeRepository {
	return &GormNodeRepository{db: db, seq: seq}
}

// Create inserts node, minting its NodeID when empty
func (r *GormNodeRepository) Create(ctx context.Context, node *warehouse.Node) error {
	insert := func(tx *gorm.DB) error {
		if node.ParentID != nil {
			if err := r.requireLiveParent(tx, *node.ParentID); err != nil {
				return err
			}
		}
		return tx.Create(models.WarehouseNodeModelFromDomain(node)).Error
	}
	if node.NodeID == "" {
		return r.seq.Mint(ctx, r.db, MintSpec{
			Class:  sequence.Node,
			Scope:  node.SequenceScope(),
			Model:  &models.WarehouseNodeModel{},
			Column: "node_id",
			Assign: node.AssignNodeID,
			Insert: insert,
		})
	}
	return insertManual(ctx, r.db, insert, fmt.Sprintf("Node ID %s already exists", node.NodeID))
}

// FindByID finds a live node by its ID
func (r *GormNodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Node, error) {
	var m models.WarehouseNodeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, nodeResource)
	}
	return m.ToDomain(), nil
}

// FindByNodeID finds a live node by its human identifier
func (r *GormNodeRepository) FindByNodeID(ctx context.Context, nodeID string) (*warehouse.Node, error) {
	var m models.WarehouseNodeModel
	if err := r.db.WithContext(ctx).First(&m, "node_id = ?", sequence.Normalize(nodeID)).Error; err != nil {
		return nil, notFound(err, nodeResource)
	}
	return m.ToDomain(), nil
}

// FindAll lists live nodes matching filter
func (r *GormNodeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*warehouse.Node, error) {
	var rows []models.WarehouseNodeModel
	query := paginate(r.filtered(ctx, filter), filter, NodeSortFields, models.WarehouseNodeModel{}.TableName())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return nodesToDomain(rows), nil
}

// Count counts live nodes matching filter
func (r *GormNodeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// FindLive returns every live node ordered by creation time
func (r *GormNodeRepository) FindLive(ctx context.Context) ([]*warehouse.Node, error) {
	var rows []models.WarehouseNodeModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return nodesToDomain(rows), nil
}

// Update locks the node, applies fn and saves it under a version check
func (r *GormNodeRepository) Update(ctx context.Context, id uuid.UUID, fn func(*warehouse.Node) error) (*warehouse.Node, error) {
	var out *warehouse.Node
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node, err := r.lock(tx, id)
		if err != nil {
			return err
		}
		before := node.ParentID
		if err := fn(node); err != nil {
			return err
		}
		if node.ParentID != nil && (before == nil || *before != *node.ParentID) {
			if err := r.requireLiveParent(tx, *node.ParentID); err != nil {
				return err
			}
			cyclic, err := r.createsCycle(tx, node.ID, *node.ParentID)
			if err != nil {
				return err
			}
			if cyclic {
				return shared.Issues{{Path: "parentId", Message: "Parent change would create a cycle"}}.Err()
			}
		}
		if err := r.save(tx, node); err != nil {
			return err
		}
		out = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDelete marks only the given node deleted; its children become roots
func (r *GormNodeRepository) SoftDelete(ctx context.Context, id uuid.UUID, actor string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node, err := r.lock(tx, id)
		if err != nil {
			return err
		}
		node.SoftDelete(actor)
		return r.save(tx, node)
	})
}

// SoftDeleteSubtree marks the node and every live descendant deleted
func (r *GormNodeRepository) SoftDeleteSubtree(ctx context.Context, id uuid.UUID, actor string) (int, error) {
	var affected int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lock(tx, id); err != nil {
			return err
		}
		links, err := r.links(tx)
		if err != nil {
			return err
		}
		ids := append([]uuid.UUID{id}, warehouse.Descendants(id, links)...)
		now := time.Now()
		result := tx.Model(&models.WarehouseNodeModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"deleted_at": now,
				"deleted_by": actor,
				"updated_at": now,
				"updated_by": actor,
				"version":    gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		affected = int(result.RowsAffected)
		return nil
	})
	return affected, err
}

func (r *GormNodeRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.WarehouseNodeModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		cond := r.db.Where("UPPER(name) LIKE ? ESCAPE '\\'", likePattern(search))
		if alpha, digits := warehouse.SearchTerms(search); alpha != "" || digits != "" {
			cond = cond.Or(r.db.
				Where("UPPER(node_id) LIKE ?", "%"+alpha+"%").
				Where("node_id LIKE ?", "%"+digits+"%"))
		}
		query = query.Where(cond)
	}
	if v := filterString(filter, warehouse.FilterNodeType); v != "" {
		query = query.Where("node_type = ?", v)
	}
	if v := filterString(filter, warehouse.FilterStatus); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := filterString(filter, warehouse.FilterParentID); v != "" {
		query = query.Where("parent_id = ?", v)
	}
	return query
}

func (r *GormNodeRepository) lock(tx *gorm.DB, id uuid.UUID) (*warehouse.Node, error) {
	var m models.WarehouseNodeModel
	if err := lockForUpdate(tx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, nodeResource)
	}
	return m.ToDomain(), nil
}

func (r *GormNodeRepository) save(tx *gorm.DB, node *warehouse.Node) error {
	expected := node.Version
	node.IncrementVersion()
	m := models.WarehouseNodeModelFromDomain(node)
	cols := m.AuditColumns()
	cols["node_id"] = m.NodeID
	cols["name"] = m.Name
	cols["node_type"] = m.NodeType
	cols["parent_id"] = m.ParentID
	cols["method"] = m.Method
	cols["address"] = m.Address
	cols["status"] = m.Status
	if err := saveVersioned(tx, &models.WarehouseNodeModel{}, node.ID, expected, cols); err != nil {
		node.Version = expected
		return err
	}
	return nil
}

// requireLiveParent share-locks the parent so it cannot be deleted before commit
func (r *GormNodeRepository) requireLiveParent(tx *gorm.DB, parentID uuid.UUID) error {
	var m models.WarehouseNodeModel
	err := lockForShare(tx).Select("id").First(&m, "id = ?", parentID).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NotFound("Parent node")
	default:
		return err
	}
}

// links loads the id/parent pairs of every live node
func (r *GormNodeRepository) links(tx *gorm.DB) ([]*warehouse.Node, error) {
	var rows []models.WarehouseNodeModel
	if err := tx.Select("id", "parent_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return nodesToDomain(rows), nil
}

func (r *GormNodeRepository) createsCycle(tx *gorm.DB, nodeID, parentID uuid.UUID) (bool, error) {
	links, err := r.links(tx)
	if err != nil {
		return false, err
	}
	parents := make(map[uuid.UUID]*uuid.UUID, len(links))
	for _, n := range links {
		parents[n.ID] = n.ParentID
	}
	return warehouse.CreatesCycle(nodeID, parentID, func(id uuid.UUID) (*uuid.UUID, bool) {
		p, ok := parents[id]
		return p, ok
	}), nil
}

func nodesToDomain(rows []models.WarehouseNodeModel) []*warehouse.Node {
	out := make([]*warehouse.Node, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
